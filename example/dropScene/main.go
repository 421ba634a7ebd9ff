package main

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	ipc "github.com/andreayres/ipc-toolkit"
	"github.com/andreayres/ipc-toolkit/broadphase"
	"github.com/andreayres/ipc-toolkit/ccd"
	"github.com/andreayres/ipc-toolkit/mesh"
)

const (
	dhat      = 0.1
	dt        = 1.0 / 60.0
	gravity   = -9.81
	stiffness = 50.0
	maxSteps  = 120
)

// SetupScene creates a square floor made of two triangles and a single
// free vertex hovering above it.
func SetupScene() (*mesh.Mesh, *mat.Dense) {
	m := mesh.New(5, nil, [][3]int{{0, 1, 2}, {0, 2, 3}})
	V := mat.NewDense(5, 3, []float64{
		-2, -2, 0,
		2, -2, 0,
		2, 2, 0,
		-2, 2, 0,
		0.3, 0.2, 1.5,
	})
	return m, V
}

func main() {
	fmt.Println("Drop test: free vertex falling onto a triangulated floor")
	fmt.Println("========================================================")

	m, V := SetupScene()
	rest := mat.DenseCopyOf(V)
	vel := [3]float64{0, 0, 0}

	fmt.Printf("Initial height: %.3f\n", V.At(4, 2))
	fmt.Printf("Barrier activation distance: %g\n\n", dhat)

	for step := 0; step < maxSteps; step++ {
		// Integrate gravity and the barrier force on the free vertex.
		set := ipc.Constraints(m, rest, V, dhat, 0, broadphase.HashGrid)
		grad := ipc.BarrierPotentialGradient(m, V, set, dhat)
		for d := 0; d < 3; d++ {
			vel[d] -= dt * stiffness * grad.AtVec(4*3+d)
		}
		vel[2] += dt * gravity

		// Propose the step and truncate it to a collision-free fraction.
		target := mat.DenseCopyOf(V)
		for d := 0; d < 3; d++ {
			target.Set(4, d, V.At(4, d)+dt*vel[d])
		}
		toi := ipc.CollisionFreeStepsize(m, V, target, broadphase.HashGrid, ccd.Options{})
		for d := 0; d < 3; d++ {
			V.Set(4, d, V.At(4, d)+toi*dt*vel[d])
		}

		if step%10 == 0 || toi < 1 {
			fmt.Printf("--- step %d ---\n", step)
			fmt.Printf("  height: %.4f\n", V.At(4, 2))
			fmt.Printf("  step fraction: %.4f\n", toi)
			fmt.Printf("  active constraints: %d\n", set.Len())
			if set.Len() > 0 {
				fmt.Printf("  barrier potential: %.6g\n", ipc.BarrierPotential(m, V, set, dhat))
				fmt.Printf("  minimum squared distance: %.6g\n", ipc.MinimumDistance(m, V, set))
			}
		}
	}

	fmt.Println()
	fmt.Printf("Final height: %.4f\n", V.At(4, 2))
	fmt.Printf("Intersection free: %v\n", !ipc.HasIntersections(m, V, broadphase.HashGrid))
}
