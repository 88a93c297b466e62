package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"
	"github.com/wailsapp/mimetype"

	"column/internal/domain"
)

// ─────────────────────────────────────────────────────────────
// Image Ingest — upload to data URI to image block
// ─────────────────────────────────────────────────────────────

var (
	ErrIngestRunning = errors.New("upload already in progress")
	ErrImageTooLarge = errors.New("image too large")
	ErrNotImage      = errors.New("not an image")
)

// ImageIngest turns uploads into image blocks. Each upload is a single-shot
// task: on success it adds exactly one block to the session, on failure or
// cancellation it adds nothing.
type ImageIngest struct {
	editor   *EditorService
	maxBytes int64
	log      logrus.FieldLogger
	guard    runningGuard
}

func NewImageIngest(editor *EditorService, maxBytes int64, log logrus.FieldLogger) *ImageIngest {
	return &ImageIngest{editor: editor, maxBytes: maxBytes, log: log.WithField("component", "ingest")}
}

// IngestTask is one running upload.
type IngestTask struct {
	id     string
	editor *EditorService
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
	err    error
}

// Cancel stops the task. If the block was not added by the time Cancel
// returns, it never will be.
func (t *IngestTask) Cancel() { t.editor.locked(t.cancel) }

// Done is closed when the task has finished.
func (t *IngestTask) Done() <-chan struct{} { return t.done }

// Wait blocks until the task finishes and returns why it added nothing, or
// nil if the block was added.
func (t *IngestTask) Wait() error {
	<-t.done
	return t.err
}

// Start begins reading r in the background. Concurrent uploads with the same
// id are refused with ErrIngestRunning.
func (s *ImageIngest) Start(ctx context.Context, id string, r io.Reader) (*IngestTask, error) {
	if !s.guard.TryLock(id) {
		return nil, fmt.Errorf("%w: %s", ErrIngestRunning, id)
	}
	ctx, cancel := context.WithCancel(ctx)
	task := &IngestTask{id: id, editor: s.editor, cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(task.done)
		defer s.guard.Unlock(id)
		defer cancel()

		task.err = s.run(ctx, task, r)
		if task.err != nil {
			s.log.WithField("upload", id).WithError(task.err).Info("image dropped")
		}
	}()
	return task, nil
}

// Ingest is Start followed by Wait.
func (s *ImageIngest) Ingest(ctx context.Context, id string, r io.Reader) error {
	task, err := s.Start(ctx, id, r)
	if err != nil {
		return err
	}
	return task.Wait()
}

// Wait blocks until every running upload finishes or ctx ends.
func (s *ImageIngest) Wait(ctx context.Context) {
	s.guard.WaitAll(ctx)
}

func (s *ImageIngest) run(ctx context.Context, task *IngestTask, r io.Reader) error {
	data, err := io.ReadAll(io.LimitReader(ctxReader{ctx: ctx, r: r}, s.maxBytes+1))
	if err != nil {
		return fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > s.maxBytes {
		return fmt.Errorf("%w: over %s", ErrImageTooLarge, humanize.IBytes(uint64(s.maxBytes)))
	}
	mime := mimetype.Detect(data)
	if !strings.HasPrefix(mime.String(), "image/") {
		return fmt.Errorf("%w: %s", ErrNotImage, mime.String())
	}
	uri := "data:" + mime.String() + ";base64," + base64.StdEncoding.EncodeToString(data)

	task.once.Do(func() {
		_, err = s.editor.addBlockWhile(context.WithoutCancel(ctx), ctx, domain.BlockTypeImage, domain.WithContent(uri))
	})
	if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
		return err
	}
	if err != nil {
		return fmt.Errorf("add image block: %w", err)
	}
	s.log.WithFields(logrus.Fields{"upload": task.id, "type": mime.String(), "size": humanize.Bytes(uint64(len(data)))}).Info("image added")
	return nil
}

// ctxReader stops reading once ctx is done.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
