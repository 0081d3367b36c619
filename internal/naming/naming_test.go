package naming

import (
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSheetPath(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"mp4", "/media/clip.mp4", "/media/clip_sheet.jpg"},
		{"upper ext", "/media/Clip.MKV", "/media/Clip_sheet.jpg"},
		{"dots in stem", "/media/a.b.c.webm", "/media/a.b.c_sheet.jpg"},
		{"spaces", "/media/My Movie (2020).mov", "/media/My Movie (2020)_sheet.jpg"},
		{"relative", "clip.3gp", "clip_sheet.jpg"},
		{"dotfile", "/media/.hidden", "/media/.hidden_sheet.jpg"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, filepath.FromSlash(tt.want), SheetPath(filepath.FromSlash(tt.input)))
		})
	}
}

func TestSheetPath_SameDirectory(t *testing.T) {
	in := filepath.Join("videos", "sub", "clip.mp4")
	assert.Equal(t, filepath.Dir(in), filepath.Dir(SheetPath(in)))
}

func TestCollisionResolver_FirstClaimWins(t *testing.T) {
	cr := NewCollisionResolver()

	owner, ok := cr.Claim("/v/clip.mkv", "/v/clip_sheet.jpg")
	require.True(t, ok)
	assert.Equal(t, "/v/clip.mkv", owner)

	owner, ok = cr.Claim("/v/clip.mp4", "/v/clip_sheet.jpg")
	assert.False(t, ok)
	assert.Equal(t, "/v/clip.mkv", owner)

	// Re-claiming by the owner is fine.
	_, ok = cr.Claim("/v/clip.mkv", "/v/clip_sheet.jpg")
	assert.True(t, ok)

	owner, ok = cr.Claim("/v/other.mp4", "/v/other_sheet.jpg")
	assert.True(t, ok)
	assert.Equal(t, "/v/other.mp4", owner)
}

func TestCollisionResolver_Concurrent(t *testing.T) {
	cr := NewCollisionResolver()
	var wg sync.WaitGroup
	wins := make(chan string, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			in := fmt.Sprintf("/v/clip.%d", i)
			if _, ok := cr.Claim(in, "/v/clip_sheet.jpg"); ok {
				wins <- in
			}
		}(i)
	}
	wg.Wait()
	close(wins)
	assert.Len(t, wins, 1)
}
