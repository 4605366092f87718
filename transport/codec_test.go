package transport

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/OpenJData/ubjson-go"
)

func TestCreateCodecKinds(t *testing.T) {
	for _, kind := range []Kind{KindNone, KindLZ4, KindZstd, ""} {
		c, err := CreateCodec(kind)
		require.NoError(t, err)
		require.NotNil(t, c)
	}
	_, err := CreateCodec("bogus")
	require.Error(t, err)
}

func TestCodecRoundTrip(t *testing.T) {
	payload := bytes.Repeat([]byte("the quick brown fox jumps over the lazy dog. "), 200)
	for _, kind := range []Kind{KindNone, KindLZ4, KindZstd} {
		t.Run(string(kind), func(t *testing.T) {
			c, err := CreateCodec(kind)
			require.NoError(t, err)

			compressed, err := c.Compress(payload)
			require.NoError(t, err)

			plain, err := c.Decompress(compressed)
			require.NoError(t, err)
			require.Equal(t, payload, plain)
		})
	}
}

func TestCodecEmptyInput(t *testing.T) {
	for _, kind := range []Kind{KindNone, KindLZ4, KindZstd} {
		c, err := CreateCodec(kind)
		require.NoError(t, err)

		compressed, err := c.Compress(nil)
		require.NoError(t, err)

		plain, err := c.Decompress(compressed)
		require.NoError(t, err)
		require.Empty(t, plain)
	}
}

func TestWrapSinkAndSourceRoundTripADocument(t *testing.T) {
	doc := ubjson.Object{
		{Key: "name", Val: ubjson.String("widget")},
		{Key: "count", Val: ubjson.Int(7)},
		{Key: "tags", Val: ubjson.Array{ubjson.String("a"), ubjson.String("b")}},
	}

	for _, kind := range []Kind{KindNone, KindLZ4, KindZstd} {
		t.Run(string(kind), func(t *testing.T) {
			codec, err := CreateCodec(kind)
			require.NoError(t, err)

			var transportBuf bytes.Buffer
			inner := ubjson.NewWriterSink(&transportBuf)
			sink := WrapSink(inner, codec)

			err = ubjson.EncodeToStream(doc, ubjson.EncodeConfig{}, sink)
			require.NoError(t, err)

			src, err := WrapSource(ubjson.NewReaderSource(&transportBuf), codec)
			require.NoError(t, err)

			got, err := ubjson.DecodeFromStream(src, ubjson.NewDecodeConfig())
			require.NoError(t, err)
			require.Equal(t, doc, got)
		})
	}
}
