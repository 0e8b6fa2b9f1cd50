package main

import (
	"fmt"
	"io"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/pavanmanishd/memkit/alloc"
	"github.com/pavanmanishd/memkit/dynarr"
	"github.com/pavanmanishd/memkit/strbuf"
)

func linesAction(ctx *cli.Context) error {
	e, err := setup(ctx)
	if err != nil {
		return err
	}
	defer e.close()

	a := e.backend.Allocator
	line, err := strbuf.New(a, strbuf.View{})
	if err != nil {
		return errors.Wrap(err, "line buffer")
	}
	defer line.Free()
	lengths, err := dynarr.New[int](a, 0)
	if err != nil {
		return errors.Wrap(err, "length array")
	}
	defer lengths.Free()

	for {
		line.Clear()
		if err := line.ReadLine(e.input()); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return errors.Wrap(err, "read line")
		}
		if err := lengths.PushBack(line.Len()); err != nil {
			return errors.Wrapf(err, "line %d", lengths.Len()+1)
		}
	}

	total, longest := 0, 0
	for _, n := range lengths.All() {
		total += n
		longest = max(longest, n)
	}
	fmt.Fprintf(ctx.App.Writer, "lines: %d\nlongest: %d\ntotal: %d\n", lengths.Len(), longest, total)
	return nil
}

func catAction(ctx *cli.Context) error {
	e, err := setup(ctx)
	if err != nil {
		return err
	}
	defer e.close()

	buf, err := strbuf.New(e.backend.Allocator, strbuf.View{})
	if err != nil {
		return errors.Wrap(err, "buffer")
	}
	defer buf.Free()
	if err := buf.ReadAll(e.input()); err != nil {
		return errors.Wrap(err, "read input")
	}
	e.log.Debug("input read", zap.Int("bytes", buf.Len()), zap.Int("capacity", buf.Cap()))
	_, err = ctx.App.Writer.Write(buf.Data())
	return err
}

// replaceAction rewrites [at, at+count) of every line. Lines too short for
// the range are written unchanged.
func replaceAction(ctx *cli.Context) error {
	e, err := setup(ctx)
	if err != nil {
		return err
	}
	defer e.close()

	at, count := ctx.Int(atFlag.Name), ctx.Int(countFlag.Name)
	with := strbuf.Lit(ctx.String(withFlag.Name))

	line, err := strbuf.New(e.backend.Allocator, strbuf.View{})
	if err != nil {
		return errors.Wrap(err, "line buffer")
	}
	defer line.Free()

	for n := 1; ; n++ {
		line.Clear()
		if err := line.ReadLine(e.input()); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return errors.Wrap(err, "read line")
		}
		err := line.Replace(at, count, with)
		switch {
		case err == nil:
		case errors.Is(err, alloc.ErrOutOfBounds), errors.Is(err, alloc.ErrInvalidRange):
			e.log.Debug("line left unchanged", zap.Int("line", n), zap.Error(err))
		default:
			return errors.Wrapf(err, "line %d", n)
		}
		if err := line.PushBack('\n'); err != nil {
			return errors.Wrapf(err, "line %d", n)
		}
		if _, err := ctx.App.Writer.Write(line.Data()); err != nil {
			return err
		}
	}
}
