package compiler

import (
	"cmp"
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"silica/internal/ast"
	"silica/internal/buildpipeline"
	"silica/internal/infer"
	"silica/internal/passes"
	"silica/internal/rif"
	"silica/internal/source"
	"silica/internal/types"
)

const defaultRounds = 2

// Options configures compilation.
type Options struct {
	// Rounds is the number of optimization rounds; 0 means the default
	// of 2.
	Rounds int
	// Jobs bounds how many kernels compile concurrently during design
	// elaboration; values below 2 compile sequentially.
	Jobs int
	// NoOptimize skips the rewrite pipeline: lower and verify only.
	NoOptimize bool
	// Sink, when set, receives per-kernel progress events.
	Sink buildpipeline.ProgressSink
	// Timer, when set, records per-stage durations.
	Timer *buildpipeline.Timer
}

func (o Options) rounds() int {
	if o.Rounds <= 0 {
		return defaultRounds
	}
	return o.Rounds
}

// CompileKernel compiles one kernel: inference, lowering, the rewrite
// pipeline, verification. The rendered pseudo-source registers in fs and the
// returned object's symbol table points into it. A nil fs gets a private
// set.
func CompileKernel(fs *source.FileSet, k *ast.Kernel, opts Options) (*rif.Object, error) {
	if fs == nil {
		fs = source.NewFileSet()
	}
	rendered := ast.Render(k)
	file := fs.Add(k.Name+".sil", []byte(rendered.Text))
	symbols := rif.Symbols{File: file, Source: rendered.Text, Spans: rendered.Bind(file)}
	stages := stageRunner{kernel: k.Name, opts: opts}

	var kinds map[ast.NodeID]types.Kind
	if err := stages.run(buildpipeline.StageInfer, func() error {
		var err error
		kinds, err = infer.Infer(k)
		return err
	}); err != nil {
		return nil, wrap(PhaseInfer, k, symbols, err)
	}

	var obj *rif.Object
	if err := stages.run(buildpipeline.StageLower, func() error {
		var err error
		obj, err = lower(k, kinds)
		return err
	}); err != nil {
		return nil, wrap(PhaseLower, k, symbols, err)
	}
	obj.Symbols = symbols

	if !opts.NoOptimize {
		if err := stages.run(buildpipeline.StageOptimize, func() error {
			var err error
			obj, err = passes.Optimize(obj, opts.rounds())
			return err
		}); err != nil {
			return nil, wrap(PhaseOptimize, k, symbols, err)
		}
	}

	if err := stages.run(buildpipeline.StageVerify, func() error {
		return passes.Verify(obj)
	}); err != nil {
		return nil, wrap(PhaseVerify, k, symbols, err)
	}
	return obj, nil
}

// CompileDesign compiles top and closes over everything it calls: each round
// scans the compiled objects for in-source callees not yet in the module and
// compiles them, until a scan adds nothing. Recursion terminates because the
// compiled set only grows. With Jobs > 1 each frontier compiles
// concurrently; module contents are identical either way.
func CompileDesign(fs *source.FileSet, top *ast.Kernel, opts Options) (*rif.Module, error) {
	if fs == nil {
		fs = source.NewFileSet()
	}
	mod := rif.NewModule(top.Fn)
	obj, err := CompileKernel(fs, top, opts)
	if err != nil {
		return nil, err
	}
	mod.Objects[top.Fn] = obj

	parents := make(map[ast.FuncID]ast.FuncID)
	for {
		frontier := discover(mod, parents)
		if len(frontier) == 0 {
			return mod, nil
		}
		chains := make(map[ast.FuncID][]string, len(frontier))
		for _, k := range frontier {
			chains[k.Fn] = callChain(mod, parents, k.Fn)
		}
		if opts.Jobs > 1 {
			err = compileParallel(fs, mod, frontier, chains, opts)
		} else {
			err = compileSequential(fs, mod, frontier, chains, opts)
		}
		if err != nil {
			return nil, err
		}
	}
}

func compileSequential(fs *source.FileSet, mod *rif.Module, frontier []*ast.Kernel, chains map[ast.FuncID][]string, opts Options) error {
	for _, k := range frontier {
		obj, err := CompileKernel(fs, k, opts)
		if err != nil {
			return &ElaborationError{Kernel: k.Name, Fn: k.Fn, Chain: chains[k.Fn], Err: err}
		}
		mod.Objects[k.Fn] = obj
	}
	return nil
}

func compileParallel(fs *source.FileSet, mod *rif.Module, frontier []*ast.Kernel, chains map[ast.FuncID][]string, opts Options) error {
	g, gctx := errgroup.WithContext(context.Background())
	g.SetLimit(min(opts.Jobs, len(frontier)))
	results := make([]*rif.Object, len(frontier))
	for i, k := range frontier {
		i, k := i, k
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			obj, err := CompileKernel(fs, k, opts)
			if err != nil {
				return &ElaborationError{Kernel: k.Name, Fn: k.Fn, Chain: chains[k.Fn], Err: err}
			}
			results[i] = obj
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	for _, obj := range results {
		mod.Objects[obj.Fn] = obj
	}
	return nil
}

// discover returns the kernels compiled objects call that are not yet in the
// module, deduplicated and name-sorted. parents records which object first
// referenced each one, for error chains.
func discover(mod *rif.Module, parents map[ast.FuncID]ast.FuncID) []*ast.Kernel {
	seen := make(map[ast.FuncID]bool)
	var out []*ast.Kernel
	for _, fn := range mod.SortedFuncs() {
		for _, ext := range mod.Objects[fn].Externals {
			if !ext.InSource() {
				continue
			}
			if _, ok := mod.Objects[ext.Fn]; ok {
				continue
			}
			if seen[ext.Fn] {
				continue
			}
			seen[ext.Fn] = true
			if _, ok := parents[ext.Fn]; !ok {
				parents[ext.Fn] = fn
			}
			out = append(out, ext.Kernel)
		}
	}
	slices.SortFunc(out, func(a, b *ast.Kernel) int {
		if c := strings.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return cmp.Compare(a.Fn, b.Fn)
	})
	return out
}

// callChain walks parent references from fn up to the design top and
// returns the kernel names top-down.
func callChain(mod *rif.Module, parents map[ast.FuncID]ast.FuncID, fn ast.FuncID) []string {
	var chain []string
	for cur, ok := parents[fn]; ok; cur, ok = parents[cur] {
		obj := mod.Objects[cur]
		if obj == nil {
			break
		}
		chain = append(chain, obj.Name)
	}
	slices.Reverse(chain)
	return chain
}

// stageRunner emits progress events and timer phases around each stage of
// one kernel's compilation.
type stageRunner struct {
	kernel string
	opts   Options
}

func (r stageRunner) run(stage buildpipeline.Stage, f func() error) error {
	r.emit(stage, buildpipeline.StatusWorking, nil, 0)
	idx := -1
	if r.opts.Timer != nil {
		idx = r.opts.Timer.Begin(r.kernel + "/" + string(stage))
	}
	start := time.Now()
	err := f()
	elapsed := time.Since(start)
	if r.opts.Timer != nil {
		r.opts.Timer.End(idx, "")
	}
	if err != nil {
		r.emit(stage, buildpipeline.StatusError, err, elapsed)
		return err
	}
	r.emit(stage, buildpipeline.StatusDone, nil, elapsed)
	return nil
}

func (r stageRunner) emit(stage buildpipeline.Stage, status buildpipeline.Status, err error, elapsed time.Duration) {
	if r.opts.Sink == nil {
		return
	}
	r.opts.Sink.OnEvent(buildpipeline.Event{
		Kernel:  r.kernel,
		Stage:   stage,
		Status:  status,
		Err:     err,
		Elapsed: elapsed,
	})
}

func wrap(phase Phase, k *ast.Kernel, symbols rif.Symbols, err error) error {
	node := errorNode(err)
	return &CompileError{
		Phase:  phase,
		Kernel: k.Name,
		Fn:     k.Fn,
		Node:   node,
		Span:   symbols.SpanOf(node),
		Err:    err,
	}
}

// errorNode extracts the node a typed cause points at, when it has one.
func errorNode(err error) ast.NodeID {
	var te *infer.TypeError
	if errors.As(err, &te) {
		return te.Node
	}
	var le *LoweringError
	if errors.As(err, &le) {
		return le.Node
	}
	var ve *passes.VerificationError
	if errors.As(err, &ve) {
		return ve.Node
	}
	var pe *passes.PassError
	if errors.As(err, &pe) {
		return pe.Node
	}
	return ast.NoNodeID
}
