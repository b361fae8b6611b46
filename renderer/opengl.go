package renderer

import (
	"fmt"
	"runtime"
	"time"

	"github.com/achilleasa/isoray/scene"
	"github.com/achilleasa/isoray/scene/reader"
	"github.com/achilleasa/isoray/tracer"
	"github.com/fsnotify/fsnotify"
	"github.com/go-gl/gl/v2.1/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
)

func init() {
	// GLFW event handling must run on the main OS thread.
	runtime.LockOSThread()
}

// An interactive opengl-based renderer. It plays the animation back in a
// window, re-rendering frames as the scene time advances, and reloads the
// scene descriptor whenever the file changes on disk.
type interactiveGLRenderer struct {
	*defaultRenderer

	// opengl handles
	window *glfw.Window
	texFbo uint32

	// Modified scene descriptors arrive here from the watcher goroutine.
	watcher    *fsnotify.Watcher
	reloadChan chan string

	paused bool
}

// Create a new interactive opengl renderer using the specified block
// scheduler and tracer pool. If opts.ScenePath is non-empty the descriptor
// file is watched and the scene is reloaded in-place when it changes.
func NewInteractive(world *scene.World, scheduler tracer.BlockScheduler, tracers []tracer.Tracer, opts Options) (Renderer, error) {
	base, err := NewDefault(world, scheduler, tracers, opts)
	if err != nil {
		return nil, err
	}

	r := &interactiveGLRenderer{
		defaultRenderer: base.(*defaultRenderer),
		reloadChan:      make(chan string, 1),
	}

	if err = r.initGL(opts); err != nil {
		r.Close()
		return nil, err
	}

	if opts.ScenePath != "" {
		if err = r.watchScene(opts.ScenePath); err != nil {
			r.Close()
			return nil, err
		}
	}

	return r, nil
}

func (r *interactiveGLRenderer) Close() {
	if r.watcher != nil {
		r.watcher.Close()
	}
	if r.window != nil {
		r.window.SetShouldClose(true)
	}
	r.defaultRenderer.Close()
}

func (r *interactiveGLRenderer) initGL(opts Options) error {
	var err error
	if err = glfw.Init(); err != nil {
		return fmt.Errorf("failed to initialize glfw: %s", err.Error())
	}

	glfw.WindowHint(glfw.Resizable, glfw.False)
	glfw.WindowHint(glfw.ContextVersionMajor, 2)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	r.window, err = glfw.CreateWindow(int(opts.FrameW), int(opts.FrameH), "isoray", nil, nil)
	if err != nil {
		return fmt.Errorf("could not create opengl window: %s", err.Error())
	}
	r.window.MakeContextCurrent()

	if err = gl.Init(); err != nil {
		return fmt.Errorf("could not init opengl: %s", err.Error())
	}

	// Setup texture for image data
	var fbTexture uint32
	gl.GenTextures(1, &fbTexture)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, fbTexture)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(opts.FrameW), int32(opts.FrameH), 0, gl.RGBA, gl.UNSIGNED_BYTE, nil)

	// Attach texture to FBO
	gl.GenFramebuffers(1, &r.texFbo)
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, r.texFbo)
	gl.FramebufferTexture2D(gl.READ_FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, fbTexture, 0)
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, 0)

	r.window.SetInputMode(glfw.CursorMode, glfw.CursorNormal)
	r.window.SetKeyCallback(r.onKeyEvent)

	return nil
}

// Watch the scene descriptor file and forward write events to the render
// loop. Editors that replace the file on save emit Create events so those
// are forwarded too.
func (r *interactiveGLRenderer) watchScene(path string) error {
	var err error
	r.watcher, err = fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("could not watch scene file: %s", err.Error())
	}
	if err = r.watcher.Add(path); err != nil {
		return fmt.Errorf("could not watch scene file: %s", err.Error())
	}

	go func() {
		for ev := range r.watcher.Events {
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			select {
			case r.reloadChan <- ev.Name:
			default:
			}
		}
	}()

	return nil
}

// Render plays the animation starting at scene time t. The call blocks until
// the window is closed.
func (r *interactiveGLRenderer) Render(t float64) error {
	lastFrame := time.Now()

	for !r.window.ShouldClose() {
		glfw.PollEvents()

		select {
		case path := <-r.reloadChan:
			if err := r.reloadScene(path); err != nil {
				r.logger.Warningf("scene reload failed: %v", err)
			}
		default:
		}

		if err := r.defaultRenderer.Render(t); err != nil {
			return err
		}
		r.present()

		// Advance scene time by a fixed step or by the elapsed wall
		// clock when no step is configured.
		now := time.Now()
		if !r.paused {
			if r.options.TimeStep > 0 {
				t += r.options.TimeStep
			} else {
				t += now.Sub(lastFrame).Seconds()
			}
		}
		lastFrame = now
	}
	return nil
}

// Upload the traced frame into the texture and blit it to the window,
// flipping vertically as the image origin is the top-left corner.
func (r *interactiveGLRenderer) present() {
	w, h := int32(r.options.FrameW), int32(r.options.FrameH)

	gl.TexSubImage2D(gl.TEXTURE_2D, 0, 0, 0, w, h, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(r.frame.Pix))

	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, r.texFbo)
	gl.BlitFramebuffer(0, 0, w, h, 0, h, w, 0, gl.COLOR_BUFFER_BIT, gl.NEAREST)
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, 0)

	r.window.SwapBuffers()
}

// Replace the world with a freshly parsed descriptor. Tracers only see the
// new scene through the next frame's UpdateScene call so no synchronization
// with in-flight blocks is needed.
func (r *interactiveGLRenderer) reloadScene(path string) error {
	world, err := reader.ReadFile(path)
	if err != nil {
		return err
	}

	r.world = world
	r.logger.Noticef("reloaded scene from %s", path)
	return nil
}

func (r *interactiveGLRenderer) onKeyEvent(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
	if action != glfw.Press {
		return
	}

	switch key {
	case glfw.KeyEscape:
		r.window.SetShouldClose(true)
	case glfw.KeySpace:
		r.paused = !r.paused
	}
}
