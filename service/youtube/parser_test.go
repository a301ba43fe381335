package youtube

import (
	"errors"
	"testing"
)

func TestExtractVideoID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{
			name:  "watch URL",
			input: "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
			want:  "dQw4w9WgXcQ",
		},
		{
			name:  "watch URL without scheme",
			input: "www.youtube.com/watch?v=dQw4w9WgXcQ",
			want:  "dQw4w9WgXcQ",
		},
		{
			name:  "watch URL with extra params",
			input: "https://www.youtube.com/watch?list=PL123&v=dQw4w9WgXcQ&t=42s",
			want:  "dQw4w9WgXcQ",
		},
		{
			name:  "short URL",
			input: "https://youtu.be/dQw4w9WgXcQ",
			want:  "dQw4w9WgXcQ",
		},
		{
			name:  "embed URL",
			input: "https://www.youtube.com/embed/dQw4w9WgXcQ",
			want:  "dQw4w9WgXcQ",
		},
		{
			name:  "nocookie embed URL",
			input: "https://www.youtube-nocookie.com/embed/dQw4w9WgXcQ",
			want:  "dQw4w9WgXcQ",
		},
		{
			name:  "bare video ID",
			input: "dQw4w9WgXcQ",
			want:  "dQw4w9WgXcQ",
		},
		{
			name:  "surrounding whitespace",
			input: "  https://youtu.be/dQw4w9WgXcQ  ",
			want:  "dQw4w9WgXcQ",
		},
		{
			name:    "empty string",
			input:   "",
			wantErr: true,
		},
		{
			name:    "not a YouTube URL",
			input:   "https://vimeo.com/123456",
			wantErr: true,
		},
		{
			name:    "ID too short",
			input:   "dQw4w9W",
			wantErr: true,
		},
		{
			name:    "watch URL with malformed ID",
			input:   "https://www.youtube.com/watch?v=short",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractVideoID(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidVideoID) {
					t.Errorf("ExtractVideoID(%q) error = %v, want ErrInvalidVideoID", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ExtractVideoID(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ExtractVideoID(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestIsValidVideoID(t *testing.T) {
	tests := []struct {
		name    string
		videoID string
		want    bool
	}{
		{name: "valid ID", videoID: "dQw4w9WgXcQ", want: true},
		{name: "valid ID with underscore and dash", videoID: "a_b-c_d-e_f", want: true},
		{name: "too short", videoID: "abc", want: false},
		{name: "too long", videoID: "dQw4w9WgXcQQ", want: false},
		{name: "illegal character", videoID: "dQw4w9WgXc!", want: false},
		{name: "empty", videoID: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidVideoID(tt.videoID); got != tt.want {
				t.Errorf("IsValidVideoID(%q) = %v, want %v", tt.videoID, got, tt.want)
			}
		})
	}
}

func TestGenerateURL(t *testing.T) {
	tests := []struct {
		name    string
		urlType string
		want    string
		wantErr bool
	}{
		{name: "video", urlType: "video", want: "https://www.youtube.com/watch?v=dQw4w9WgXcQ"},
		{name: "short", urlType: "short", want: "https://youtu.be/dQw4w9WgXcQ"},
		{name: "embed", urlType: "embed", want: "https://www.youtube.com/embed/dQw4w9WgXcQ"},
		{name: "nocookie", urlType: "nocookie", want: "https://www.youtube-nocookie.com/embed/dQw4w9WgXcQ"},
		{name: "unknown type", urlType: "shorts", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := GenerateURL("dQw4w9WgXcQ", tt.urlType)
			if tt.wantErr {
				if err == nil {
					t.Errorf("GenerateURL(%q) expected error, got %q", tt.urlType, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("GenerateURL(%q) unexpected error: %v", tt.urlType, err)
			}
			if got != tt.want {
				t.Errorf("GenerateURL(%q) = %v, want %v", tt.urlType, got, tt.want)
			}
		})
	}

	if _, err := GenerateURL("bad id", "video"); !errors.Is(err, ErrInvalidVideoID) {
		t.Errorf("GenerateURL with invalid ID error = %v, want ErrInvalidVideoID", err)
	}
}

func TestGenerateThumbnailURL(t *testing.T) {
	got, err := GenerateThumbnailURL("dQw4w9WgXcQ", "maxresdefault")
	if err != nil {
		t.Fatalf("GenerateThumbnailURL() unexpected error: %v", err)
	}
	want := "https://img.youtube.com/vi/dQw4w9WgXcQ/maxresdefault.jpg"
	if got != want {
		t.Errorf("GenerateThumbnailURL() = %v, want %v", got, want)
	}

	if _, err := GenerateThumbnailURL("dQw4w9WgXcQ", "4k"); err == nil {
		t.Error("GenerateThumbnailURL() expected error for unknown quality")
	}
}

func TestParse(t *testing.T) {
	info, err := Parse("https://youtu.be/dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("Parse() unexpected error: %v", err)
	}

	if info.VideoID != "dQw4w9WgXcQ" {
		t.Errorf("Parse() VideoID = %v, want dQw4w9WgXcQ", info.VideoID)
	}
	if info.VideoURL != "https://www.youtube.com/watch?v=dQw4w9WgXcQ" {
		t.Errorf("Parse() VideoURL = %v", info.VideoURL)
	}
	if info.ThumbnailURL != "https://img.youtube.com/vi/dQw4w9WgXcQ/hqdefault.jpg" {
		t.Errorf("Parse() ThumbnailURL = %v", info.ThumbnailURL)
	}
	if len(info.AllThumbnails) != 5 {
		t.Errorf("Parse() AllThumbnails has %d entries, want 5", len(info.AllThumbnails))
	}

	if _, err := Parse("https://example.com/watch?v=nope"); !errors.Is(err, ErrInvalidVideoID) {
		t.Errorf("Parse() error = %v, want ErrInvalidVideoID", err)
	}
}

func TestVideoParameters(t *testing.T) {
	params, err := VideoParameters("https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=42s")
	if err != nil {
		t.Fatalf("VideoParameters() unexpected error: %v", err)
	}
	if params.Get("v") != "dQw4w9WgXcQ" {
		t.Errorf("VideoParameters() v = %v, want dQw4w9WgXcQ", params.Get("v"))
	}
	if params.Get("t") != "42s" {
		t.Errorf("VideoParameters() t = %v, want 42s", params.Get("t"))
	}

	if _, err := VideoParameters("https://vimeo.com/watch?v=abc"); !errors.Is(err, ErrInvalidVideoID) {
		t.Errorf("VideoParameters() error = %v, want ErrInvalidVideoID", err)
	}
}
