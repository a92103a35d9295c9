package contig_test

import (
	"context"
	"errors"
	"fmt"

	"github.com/joshuapare/contigmem/contig"
)

func ExampleAllocator_Allocate() {
	opts := contig.DefaultOptions()
	opts.Strategy = contig.StrategyMmap

	a, err := contig.New(opts)
	if err != nil {
		fmt.Println(err)
		return
	}

	blk, err := a.Allocate(context.Background(), 256<<20)
	if errors.Is(err, contig.ErrPermissionDenied) {
		fmt.Println("run with CAP_SYS_ADMIN to read frame numbers")
		return
	}
	if err != nil {
		fmt.Println(err)
		return
	}
	defer a.Release(blk)

	fmt.Println(blk.Report())
}
