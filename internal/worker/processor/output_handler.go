package processor

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"mediakit/internal/compose"
	"mediakit/internal/pkg/errors"
	"mediakit/internal/pkg/logger"
	"mediakit/internal/ports"
)

// OutputFile is one uploaded artifact. Metadata fields are inlined and only
// present when requested.
type OutputFile struct {
	FileURL string `json:"file_url"`
	*compose.Metadata
}

// URLs returns the durable locations in artifact order.
func URLs(files []OutputFile) []string {
	urls := make([]string, len(files))
	for i, f := range files {
		urls[i] = f.FileURL
	}
	return urls
}

type OutputHandler struct {
	sp  ports.StorageProvider
	log *logger.Logger
}

func NewOutputHandler(sp ports.StorageProvider, log *logger.Logger) *OutputHandler {
	if log == nil {
		log = logger.NewDiscard()
	}
	return &OutputHandler{sp: sp, log: log.WithComponent("outputs")}
}

// ObjectKey is the durable key of a local file: "{job}/{basename}".
func ObjectKey(jobID, localPath string) string {
	return jobID + "/" + filepath.Base(localPath)
}

// Upload stores every artifact in order. On any failure the objects already
// written for this call are deleted and UPLOAD_ERROR is returned, so callers
// never see a partial list.
func (oh *OutputHandler) Upload(ctx context.Context, jobID string, artifacts []compose.Artifact) ([]OutputFile, error) {
	batch := oh.batch(ctx, jobID)

	files := make([]OutputFile, 0, len(artifacts))
	for _, a := range artifacts {
		url, err := batch.put(a.LocalPath)
		if err != nil {
			batch.rollback()
			return nil, err.WithField("output_index", a.OutputIndex)
		}
		files = append(files, OutputFile{FileURL: url, Metadata: a.Metadata})
	}
	return files, nil
}

// UploadFiles stores plain local files, used by the download and transcribe jobs.
func (oh *OutputHandler) UploadFiles(ctx context.Context, jobID string, paths []string) ([]string, error) {
	batch := oh.batch(ctx, jobID)

	urls := make([]string, 0, len(paths))
	for _, p := range paths {
		url, err := batch.put(p)
		if err != nil {
			batch.rollback()
			return nil, err
		}
		urls = append(urls, url)
	}
	return urls, nil
}

func (oh *OutputHandler) batch(ctx context.Context, jobID string) *uploadBatch {
	return &uploadBatch{
		ctx:   ctx,
		jobID: jobID,
		sp:    oh.sp,
		log:   oh.log.FromContext(ctx),
	}
}

// uploadBatch tracks the objects written so a failure can take them back.
type uploadBatch struct {
	ctx      context.Context
	jobID    string
	sp       ports.StorageProvider
	log      *logger.Logger
	uploaded []string
}

func (b *uploadBatch) put(localPath string) (string, *errors.Error) {
	key := ObjectKey(b.jobID, localPath)

	f, err := os.Open(localPath)
	if err != nil {
		return "", errors.WrapWithCode(err, errors.CodeUpload, "processor.upload", "failed to open artifact").
			WithField("path", localPath)
	}
	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return "", errors.WrapWithCode(err, errors.CodeUpload, "processor.upload", "failed to stat artifact").
			WithField("path", localPath)
	}

	out, err := b.sp.PutObject(b.ctx, ports.PutObjectInput{
		ObjectKey:   key,
		ContentType: contentTypeFor(localPath),
		Reader:      f,
		Size:        st.Size(),
	})
	_ = f.Close()
	if err != nil {
		return "", errors.WrapWithCode(err, errors.CodeUpload, "processor.upload",
			fmt.Sprintf("failed to upload %s", key)).WithField("object_key", key)
	}
	b.uploaded = append(b.uploaded, out.ObjectKey)

	if err := os.Remove(localPath); err != nil && !os.IsNotExist(err) {
		b.log.Warn("local artifact not removed", "code", string(errors.CodeCleanup), "path", localPath, "error", err)
	}
	b.log.Info("artifact uploaded", "object_key", key, "url", out.URL, "bytes", out.Size)
	return out.URL, nil
}

func (b *uploadBatch) rollback() {
	for _, key := range b.uploaded {
		if err := b.sp.DeleteObject(b.ctx, key); err != nil {
			b.log.Warn("rollback delete failed", "object_key", key, "error", err)
		}
	}
	b.uploaded = nil
}

var mediaTypes = map[string]string{
	".mp4":  "video/mp4",
	".mov":  "video/quicktime",
	".mkv":  "video/x-matroska",
	".webm": "video/webm",
	".mp3":  "audio/mpeg",
	".m4a":  "audio/mp4",
	".wav":  "audio/wav",
	".flac": "audio/flac",
	".ogg":  "audio/ogg",
	".srt":  "application/x-subrip",
	".ass":  "text/x-ssa",
	".vtt":  "text/vtt",
	".txt":  "text/plain; charset=utf-8",
	".json": "application/json",
}

func contentTypeFor(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if ct, ok := mediaTypes[ext]; ok {
		return ct
	}
	if ct := mime.TypeByExtension(ext); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
