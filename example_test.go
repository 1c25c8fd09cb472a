package directobj_test

import (
	"fmt"

	"github.com/hupe1980/directobj"
)

type point struct {
	X, Y  int32
	Label *string
}

func (p *point) VisitFields(v directobj.FieldVisitor) {
	v.Int(&p.X)
	v.Int(&p.Y)
	v.String(&p.Label)
}

func ExampleHeap_FromRecord() {
	heap := directobj.NewHeap()
	defer heap.Close()

	label := "origin"
	b, err := heap.FromRecord(directobj.FieldRecord(&point{Label: &label}), nil)
	if err != nil {
		panic(err)
	}
	defer b.Free()

	var p point
	if err := b.Populate(directobj.FieldRecord(&p), nil); err != nil {
		panic(err)
	}

	fmt.Println(b.Len(), p.X, p.Y, *p.Label)
	// Output: 18 0 0 origin
}

func ExampleScope() {
	heap := directobj.NewHeap()
	defer heap.Close()

	scope := directobj.NewScope()
	for _, s := range []string{"a", "b", "c"} {
		if _, err := heap.NewBuilder().FromBytes([]byte(s)).WithAutoRelease(scope).Build(); err != nil {
			panic(err)
		}
	}
	fmt.Println(heap.Stats().LiveBlocks)

	_ = scope.Close()
	fmt.Println(heap.Stats().LiveBlocks)
	// Output:
	// 3
	// 0
}
