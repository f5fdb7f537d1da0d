// Package convert implements the marker conversion pipeline: context
// assembly, request orchestration, replacement building, line application
// and the whole-document convergence loop.
package convert

import (
	"context"

	"github.com/EricWay1024/lazy-latex/internal/backend"
	"github.com/EricWay1024/lazy-latex/internal/document"
	"github.com/EricWay1024/lazy-latex/internal/logger"
	"github.com/EricWay1024/lazy-latex/internal/report"
	"github.com/EricWay1024/lazy-latex/internal/scanner"
	"github.com/EricWay1024/lazy-latex/internal/types"
)

// Engine converts marker regions in one document.
type Engine struct {
	backend   backend.Backend
	cfg       *types.Config
	kind      types.DocumentKind
	session   *EditSession
	assembler *ContextAssembler
	delims    Delimiters
	recorder  *report.Recorder
	docName   string
}

// NewEngine creates an engine for a document of the given kind.
func NewEngine(b backend.Backend, cfg *types.Config, kind types.DocumentKind) *Engine {
	return &Engine{
		backend:   b,
		cfg:       cfg,
		kind:      kind,
		session:   NewEditSession(),
		assembler: NewContextAssembler(cfg.ContextLines),
		delims:    ResolveDelimiters(kind, cfg.InlineDelimiter, cfg.DisplayDelimiter),
	}
}

// SetRecorder attaches a failure recorder. Without one, failures are only
// logged.
func (e *Engine) SetRecorder(r *report.Recorder) {
	e.recorder = r
}

// SetDocumentName sets the name used in failure records.
func (e *Engine) SetDocumentName(name string) {
	e.docName = name
}

// Session returns the engine's edit session, for host integrations that need
// to gate their change listeners.
func (e *Engine) Session() *EditSession {
	return e.session
}

// ConvertLine processes one line: scan for marker regions, generate, build
// replacements and apply them as a single atomic edit. Returns whether the
// line was edited. A line with zero regions produces zero operations and
// zero edits.
func (e *Engine) ConvertLine(ctx context.Context, buf document.Buffer, lineNum int) (bool, error) {
	docContext, lineText, err := e.assembler.Assemble(buf, lineNum)
	if err != nil {
		return false, err
	}

	regions := scanner.ScanLine(lineText)
	if len(regions) == 0 {
		return false, nil
	}

	logger.Debug("converting line",
		logger.Int("line", lineNum),
		logger.Int("regions", len(regions)))

	// The backend calls below are the suspension points; the snapshot
	// generation lets the applier detect that the buffer moved meanwhile.
	snapshotGen := buf.Generation()

	results := e.generateLine(ctx, regions, docContext, lineText, lineNum)

	var ops []types.Replacement
	for _, res := range results {
		ops = append(ops, BuildReplacements(res.region, res.text, lineText, e.delims)...)
	}

	return applyLineEdit(buf, e.session, lineNum, lineText, ops, snapshotGen, e.cfg.KeepOriginal, e.kind)
}

// ConvertSelection converts arbitrary selected text rather than marker
// regions. Empty generation is an explicit error on this manual path.
func (e *Engine) ConvertSelection(ctx context.Context, text, docContext string) (string, error) {
	return backend.GenerateSelection(ctx, e.backend, e.kind, text, docContext)
}

// HandleNewline is the auto-convert trigger for the line just completed by a
// newline keystroke. It is suppressed while the engine is applying its own
// edits, and entirely when auto-convert is disabled.
func (e *Engine) HandleNewline(ctx context.Context, buf document.Buffer, completedLine int) (bool, error) {
	if !e.cfg.AutoConvertOnEnter {
		return false, nil
	}
	if e.session.ApplyingEdit() {
		return false, nil
	}
	return e.ConvertLine(ctx, buf, completedLine)
}

// HandleWillSave runs before a save is written. In convert-before-save mode
// it blocks the save until the whole document has converged.
func (e *Engine) HandleWillSave(ctx context.Context, buf document.Buffer) (bool, error) {
	if e.cfg.SaveMode != types.SaveModeBefore {
		return false, nil
	}

	release, ok := e.session.BeginSavePass()
	if !ok {
		return false, nil
	}
	defer release()

	return e.ConvertDocument(ctx, buf)
}

// HandleDidSave runs after a save has been written. In
// save-then-convert-then-save mode it converts and re-saves once if anything
// changed.
func (e *Engine) HandleDidSave(ctx context.Context, buf *document.FileBuffer) (bool, error) {
	if e.cfg.SaveMode != types.SaveModeAfter {
		return false, nil
	}

	release, ok := e.session.BeginSavePass()
	if !ok {
		return false, nil
	}
	defer release()

	converted, err := e.ConvertDocument(ctx, buf)
	if err != nil {
		return converted, err
	}
	if converted {
		if err := buf.Flush(); err != nil {
			return converted, err
		}
	}
	return converted, nil
}
