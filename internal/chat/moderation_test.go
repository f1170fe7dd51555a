package chat

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestModerator_Censor(t *testing.T) {
	req := require.New(t)
	mod, err := NewModerator([]string{"badger", "snake"}, '*')
	req.NoError(err)
	req.NotNil(mod)

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "Plain word", input: "The badger is here", expected: "The ****** is here"},
		{name: "Upper case", input: "BADGER!", expected: "******!"},
		{name: "Leet speak", input: "a b4dg3r", expected: "a ******"},
		{name: "Several words", input: "snake and badger", expected: "***** and ******"},
		{name: "Clean text", input: "hello there", expected: "hello there"},
		{name: "Empty text", input: "", expected: ""},
		{name: "Inside a longer word", input: "honeybadgers", expected: "honeybadgers"},
		{name: "Spaced out letters", input: "a s-n a k e!", expected: "a *********!"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, mod.Censor(tt.input))
		})
	}
}

func TestModerator_RespectsWordBoundaries(t *testing.T) {
	req := require.New(t)
	mod, err := NewModerator([]string{"ass"}, '*')
	req.NoError(err)

	req.Equal("first class pass", mod.Censor("first class pass"))
	req.Equal("you ***!", mod.Censor("you ass!"))
	req.Equal("*****", mod.Censor("a s s"))
}

func TestModerator_EmptyDictionaryDisablesFiltering(t *testing.T) {
	req := require.New(t)
	mod, err := NewModerator([]string{"", "  "}, '*')
	req.NoError(err)
	req.Nil(mod)
	req.Equal("badger", mod.Censor("badger"))
}

func TestDecodeFile(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	text := []byte("hello world")

	tests := []struct {
		name     string
		payload  string
		limit    int
		wantMime string
		wantData []byte
		wantErr  error
	}{
		{
			name:     "Data URL is sniffed",
			payload:  "data:application/octet-stream;base64," + base64.StdEncoding.EncodeToString(png),
			wantMime: "image/png",
			wantData: png,
		},
		{
			name:     "Bare base64",
			payload:  base64.StdEncoding.EncodeToString(text),
			wantMime: "text/plain",
			wantData: text,
		},
		{
			name:    "Data URL without base64 marker",
			payload: "data:text/plain,hello",
			wantErr: ErrInvalidFile,
		},
		{
			name:    "Data URL without body",
			payload: "data:text/plain;base64",
			wantErr: ErrInvalidFile,
		},
		{
			name:    "Not base64",
			payload: "%%%not base64%%%",
			wantErr: ErrInvalidFile,
		},
		{
			name:    "Over the limit",
			payload: base64.StdEncoding.EncodeToString(make([]byte, 64)),
			limit:   16,
			wantErr: ErrFileTooLarge,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			data, mime, err := decodeFile(tt.payload, tt.limit)
			if tt.wantErr != nil {
				req.ErrorIs(err, tt.wantErr)
				return
			}
			req.NoError(err)
			req.Equal(tt.wantData, data)
			req.Equal(tt.wantMime, mime)
		})
	}
}
