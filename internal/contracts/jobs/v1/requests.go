// Package v1 holds the request bodies accepted by the /v1 job endpoints and
// their validation. The same types are stored as job params and decoded again
// by the worker.
package v1

import (
	"fmt"
	"net/url"
	"strings"

	"mediakit/internal/compose"
	"mediakit/internal/pkg/errors"
)

// Envelope fields shared by every job request.
type Envelope struct {
	WebhookURL string `json:"webhook_url,omitempty"`
	ID         string `json:"id,omitempty"`
}

func (e Envelope) validate() error {
	if e.WebhookURL != "" {
		if err := requireURL("webhook_url", e.WebhookURL); err != nil {
			return err
		}
	}
	return nil
}

// ComposeRequest is the body of POST /v1/ffmpeg/compose.
type ComposeRequest struct {
	compose.Request
	Envelope
}

func (r *ComposeRequest) Validate() error {
	if len(r.Inputs) == 0 {
		return errors.ValidationField("inputs", "at least one input is required")
	}
	for i, in := range r.Inputs {
		if err := requireURL(fmt.Sprintf("inputs[%d].file_url", i), in.FileURL); err != nil {
			return err
		}
		if err := validateOptions(fmt.Sprintf("inputs[%d].options", i), in.Options); err != nil {
			return err
		}
	}
	for i, f := range r.Filters {
		if strings.TrimSpace(f.Expression) == "" {
			return errors.ValidationField(fmt.Sprintf("filters[%d].filter", i), "filter is required")
		}
	}
	if len(r.Outputs) == 0 {
		return errors.ValidationField("outputs", "at least one output is required")
	}
	for i, out := range r.Outputs {
		field := fmt.Sprintf("outputs[%d].options", i)
		if out.Options == nil {
			return errors.ValidationField(field, "options is required")
		}
		if err := validateOptions(field, out.Options); err != nil {
			return err
		}
	}
	if err := validateOptions("global_options", r.GlobalOptions); err != nil {
		return err
	}
	return r.Envelope.validate()
}

// CaptionOption is one "-option value" pair appended to the burn-in command.
type CaptionOption struct {
	Option string           `json:"option"`
	Value  compose.Argument `json:"value"`
}

// CaptionRequest is the body of POST /v1/caption-video.
type CaptionRequest struct {
	VideoURL string          `json:"video_url"`
	SRTFile  string          `json:"srt_file,omitempty"`
	Options  []CaptionOption `json:"options,omitempty"`
	Envelope
}

func (r *CaptionRequest) Validate() error {
	if err := requireURL("video_url", r.VideoURL); err != nil {
		return err
	}
	for i, o := range r.Options {
		if strings.TrimSpace(o.Option) == "" {
			return errors.ValidationField(fmt.Sprintf("options[%d].option", i), "option is required")
		}
		if !o.Value.IsSet() {
			return errors.ValidationField(fmt.Sprintf("options[%d].value", i), "value is required")
		}
	}
	return r.Envelope.validate()
}

// DownloadRequest is the body of POST /v1/media/download.
type DownloadRequest struct {
	AudioDataList []string `json:"audio_data_list,omitempty"`
	MediaURLList  []string `json:"media_url_list,omitempty"`
	Envelope
}

func (r *DownloadRequest) Validate() error {
	if len(r.AudioDataList) == 0 && len(r.MediaURLList) == 0 {
		return errors.Validation("audio_data_list or media_url_list is required")
	}
	for i, u := range r.MediaURLList {
		if err := requireURL(fmt.Sprintf("media_url_list[%d]", i), u); err != nil {
			return err
		}
	}
	return r.Envelope.validate()
}

// Transcription response types.
const (
	ResponseDirect = "direct"
	ResponseCloud  = "cloud"
)

// TranscribeRequest is the body of POST /v1/media/transcribe. Pointer flags
// distinguish "absent" from false so defaults can apply.
type TranscribeRequest struct {
	MediaURL        string `json:"media_url"`
	Task            string `json:"task,omitempty"`
	IncludeText     *bool  `json:"include_text,omitempty"`
	IncludeSRT      *bool  `json:"include_srt,omitempty"`
	IncludeSegments *bool  `json:"include_segments,omitempty"`
	WordTimestamps  *bool  `json:"word_timestamps,omitempty"`
	ResponseType    string `json:"response_type,omitempty"`
	Language        string `json:"language,omitempty"`
	Envelope
}

func (r *TranscribeRequest) Validate() error {
	if err := requireURL("media_url", r.MediaURL); err != nil {
		return err
	}
	switch r.Task {
	case "", "transcribe", "translate":
	default:
		return errors.ValidationField("task", "task must be transcribe or translate")
	}
	switch r.ResponseType {
	case "", ResponseDirect, ResponseCloud:
	default:
		return errors.ValidationField("response_type", "response_type must be direct or cloud")
	}
	return r.Envelope.validate()
}

// WantText defaults to true; the other include flags default to false.
func (r *TranscribeRequest) WantText() bool { return boolOr(r.IncludeText, true) }

func (r *TranscribeRequest) WantSRT() bool { return boolOr(r.IncludeSRT, false) }

func (r *TranscribeRequest) WantSegments() bool { return boolOr(r.IncludeSegments, false) }

func (r *TranscribeRequest) WantWordTimes() bool { return boolOr(r.WordTimestamps, false) }

// Response returns the response type, direct when unset.
func (r *TranscribeRequest) Response() string {
	if r.ResponseType == "" {
		return ResponseDirect
	}
	return r.ResponseType
}

func boolOr(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}

func validateOptions(field string, opts []compose.Option) error {
	for i, o := range opts {
		if strings.TrimSpace(o.Flag) == "" {
			return errors.ValidationField(fmt.Sprintf("%s[%d].option", field, i), "option is required")
		}
	}
	return nil
}

func requireURL(field, raw string) error {
	if strings.TrimSpace(raw) == "" {
		return errors.ValidationField(field, field+" is required")
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return errors.ValidationField(field, field+" must be an http(s) URL")
	}
	return nil
}
