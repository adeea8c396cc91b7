package math

import "unsafe"

// Vec2 represents a 2D vector
type Vec2 struct {
	X, Y float32
}

// Vec3 represents a 3D vector
type Vec3 struct {
	X, Y, Z float32
}

// Vec4 represents a 4D vector
type Vec4 struct {
	X, Y, Z, W float32
}

// Mat4 is a 4x4 matrix, typically used to represent object
// transformations. Elements are stored row-major.
type Mat4 struct {
	Data [16]float32
}

// Vertex3D is a position/colour/texcoord vertex as consumed by the
// example pipelines.
type Vertex3D struct {
	Position Vec3
	Colour   Vec3
	Texcoord Vec2
}

// Vertex3DStride is the byte stride of one Vertex3D in a vertex buffer.
const Vertex3DStride = uint32(unsafe.Sizeof(Vertex3D{}))

// Vertex3DBytes views a vertex slice as the raw bytes a buffer upload
// consumes. The returned slice aliases the input.
func Vertex3DBytes(verts []Vertex3D) []byte {
	if len(verts) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&verts[0])), len(verts)*int(Vertex3DStride))
}

// Uint32Bytes views an index slice as raw bytes.
func Uint32Bytes(indices []uint32) []byte {
	if len(indices) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&indices[0])), len(indices)*4)
}
