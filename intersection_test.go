package ipc

import (
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/andreayres/ipc-toolkit/broadphase"
	"github.com/andreayres/ipc-toolkit/mesh"
)

func TestHasIntersections(t *testing.T) {
	tests := []struct {
		name string
		m    *mesh.Mesh
		V    *mat.Dense
		want bool
	}{
		{
			name: "2d crossing segments",
			m:    mesh.New(4, [][2]int{{0, 1}, {2, 3}}, nil),
			V: dense(4, 2,
				0, 0,
				1, 1,
				0, 1,
				1, 0),
			want: true,
		},
		{
			name: "2d near miss",
			m:    mesh.New(4, [][2]int{{0, 1}, {2, 3}}, nil),
			V: dense(4, 2,
				0, 0,
				1, 0,
				0.5, 0.015,
				0.5, 1),
			want: false,
		},
		{
			name: "2d separated segments",
			m:    mesh.New(4, [][2]int{{0, 1}, {2, 3}}, nil),
			V: dense(4, 2,
				0, 0,
				1, 0,
				0, 0.5,
				1, 0.5),
			want: false,
		},
		{
			name: "3d segment pierces triangle",
			m:    mesh.New(5, [][2]int{{3, 4}}, [][3]int{{0, 1, 2}}),
			V: dense(5, 3,
				0, 0, 0,
				1, 0, 0,
				0, 1, 0,
				0.25, 0.25, -0.5,
				0.25, 0.25, 0.5),
			want: true,
		},
		{
			name: "3d segment crosses plane outside triangle",
			m:    mesh.New(5, [][2]int{{3, 4}}, [][3]int{{0, 1, 2}}),
			V: dense(5, 3,
				0, 0, 0,
				1, 0, 0,
				0, 1, 0,
				0.9, 0.9, -0.5,
				0.9, 0.9, 0.5),
			want: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, method := range []broadphase.Method{broadphase.HashGrid, broadphase.BruteForce} {
				if got := HasIntersections(tt.m, tt.V, method); got != tt.want {
					t.Errorf("method %v: HasIntersections = %v, want %v", method, got, tt.want)
				}
			}
		})
	}
}
