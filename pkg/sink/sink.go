package sink

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/matzehuels/stackaudit/pkg/errors"
)

// Kind is the type of a report destination.
type Kind int

const (
	KindFile Kind = iota
	KindStdout
	KindS3
)

const s3Scheme = "s3://"

// Target is a parsed destination.
type Target struct {
	Kind   Kind
	Path   string // KindFile
	Bucket string // KindS3
	Key    string // KindS3
}

func (t Target) String() string {
	switch t.Kind {
	case KindStdout:
		return "stdout"
	case KindS3:
		return s3Scheme + t.Bucket + "/" + t.Key
	default:
		return t.Path
	}
}

// Parse classifies a target string.
func Parse(target string) (Target, error) {
	switch {
	case target == "":
		return Target{}, errors.New(errors.ErrCodeInvalidInput, "empty output target")
	case target == "-":
		return Target{Kind: KindStdout}, nil
	case strings.HasPrefix(target, s3Scheme):
		bucket, key, ok := strings.Cut(strings.TrimPrefix(target, s3Scheme), "/")
		if !ok || bucket == "" || key == "" || strings.HasSuffix(key, "/") {
			return Target{}, errors.New(errors.ErrCodeInvalidInput, "invalid S3 target %q (want s3://bucket/key)", target)
		}
		return Target{Kind: KindS3, Bucket: bucket, Key: key}, nil
	default:
		return Target{Kind: KindFile, Path: filepath.Clean(target)}, nil
	}
}

// PutObjectAPI is the part of the S3 client used by the S3 sink.
type PutObjectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Options configures [Open].
type Options struct {
	// ContentType is stored with S3 objects. Default: application/octet-stream.
	ContentType string

	// Stdout receives "-" targets. Default: os.Stdout.
	Stdout io.Writer

	// S3 uploads s3:// targets. Default: [NewS3Client].
	S3 PutObjectAPI
}

// Writer receives a rendered report. Close commits it to the target;
// Abort discards everything written and leaves the target untouched.
type Writer interface {
	io.WriteCloser
	Abort() error
}

// Open returns a writer for target. Callers must Close or Abort it. File
// targets are written to a temporary file and renamed into place on Close;
// S3 targets are uploaded on Close and the upload error is returned there.
func Open(ctx context.Context, target string, opts Options) (Writer, error) {
	t, err := Parse(target)
	if err != nil {
		return nil, err
	}

	switch t.Kind {
	case KindStdout:
		w := opts.Stdout
		if w == nil {
			w = os.Stdout
		}
		return nopCloser{w}, nil

	case KindS3:
		client := opts.S3
		if client == nil {
			c, err := NewS3Client(ctx)
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeReport, err, "configure S3 client for %s", t)
			}
			client = c
		}
		ct := opts.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		return &s3Writer{ctx: ctx, client: client, target: t, contentType: ct}, nil

	default:
		dir := filepath.Dir(t.Path)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Wrap(errors.ErrCodeReport, err, "create directory %s", dir)
		}
		f, err := os.CreateTemp(dir, "."+filepath.Base(t.Path)+".*.tmp")
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeReport, err, "create %s", t.Path)
		}
		return &fileWriter{f: f, path: t.Path}, nil
	}
}

// NewS3Client builds an S3 client from the default AWS configuration chain
// (environment, shared config files, instance roles). AWS_ENDPOINT_URL
// switches to path-style addressing for S3-compatible stores.
func NewS3Client(ctx context.Context) (*s3.Client, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, err
	}
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}
	return s3.NewFromConfig(cfg, withEndpoint(os.Getenv("AWS_ENDPOINT_URL"))), nil
}

func withEndpoint(endpoint string) func(*s3.Options) {
	return func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	}
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }
func (nopCloser) Abort() error { return nil }

// fileWriter writes next to the target and renames over it on Close.
type fileWriter struct {
	f    *os.File
	path string
	done bool
}

func (w *fileWriter) Write(p []byte) (int, error) {
	if w.done {
		return 0, fmt.Errorf("write to closed sink %s", w.path)
	}
	return w.f.Write(p)
}

func (w *fileWriter) Close() error {
	if w.done {
		return nil
	}
	w.done = true

	tmp := w.f.Name()
	err := w.f.Chmod(0o644)
	if cerr := w.f.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = os.Rename(tmp, w.path)
	}
	if err != nil {
		_ = os.Remove(tmp)
		return errors.Wrap(errors.ErrCodeReport, err, "write %s", w.path)
	}
	return nil
}

func (w *fileWriter) Abort() error {
	if w.done {
		return nil
	}
	w.done = true
	_ = w.f.Close()
	return os.Remove(w.f.Name())
}

// s3Writer buffers the report and uploads it on Close.
type s3Writer struct {
	ctx         context.Context
	client      PutObjectAPI
	target      Target
	contentType string
	buf         bytes.Buffer
	closed      bool
}

func (w *s3Writer) Write(p []byte) (int, error) {
	if w.closed {
		return 0, fmt.Errorf("write to closed sink %s", w.target)
	}
	return w.buf.Write(p)
}

func (w *s3Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	_, err := w.client.PutObject(w.ctx, &s3.PutObjectInput{
		Bucket:        aws.String(w.target.Bucket),
		Key:           aws.String(w.target.Key),
		Body:          bytes.NewReader(w.buf.Bytes()),
		ContentLength: aws.Int64(int64(w.buf.Len())),
		ContentType:   aws.String(w.contentType),
	})
	if err != nil {
		return errors.Wrap(errors.ErrCodeReport, err, "upload %s", w.target)
	}
	return nil
}

func (w *s3Writer) Abort() error {
	w.closed = true
	w.buf.Reset()
	return nil
}
