package utils_test

import (
	"bufio"
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/git-fetch-all/internal/utils"
)

func TestFlushingWriterFlushesBufferedTargets(testInstance *testing.T) {
	destination := &bytes.Buffer{}
	bufferedWriter := bufio.NewWriterSize(destination, 4096)

	writer := utils.NewFlushingWriter(bufferedWriter)
	written, writeError := writer.Write([]byte("✓ repo:origin\n"))
	require.NoError(testInstance, writeError)
	require.Equal(testInstance, len("✓ repo:origin\n"), written)
	require.Equal(testInstance, "✓ repo:origin\n", destination.String())
}

func TestFlushingWriterDoesNotDoubleWrap(testInstance *testing.T) {
	writer := utils.NewFlushingWriter(&bytes.Buffer{})
	require.Same(testInstance, writer, utils.NewFlushingWriter(writer))
	require.Nil(testInstance, utils.NewFlushingWriter(nil))
}
