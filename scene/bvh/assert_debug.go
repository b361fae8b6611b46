//go:build debug

package bvh

func assertStack() {
	panic("bvh: traversal stack overflow; tree deeper than maxStackDepth")
}
