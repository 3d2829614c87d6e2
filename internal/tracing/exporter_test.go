package tracing

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func readRecords(t *testing.T, path string) []SpanRecord {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var out []SpanRecord
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var rec SpanRecord
		require.NoError(t, json.Unmarshal(sc.Bytes(), &rec))
		out = append(out, rec)
	}
	require.NoError(t, sc.Err())
	return out
}

func TestFileExporter_WritesJSONL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "traces.jsonl")
	exp, err := NewFileExporter(path)
	require.NoError(t, err)

	start := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	stubs := []tracetest.SpanStub{
		{
			Name:      SpanParse,
			StartTime: start,
			EndTime:   start.Add(1500 * time.Microsecond),
			Attributes: []attribute.KeyValue{
				attribute.String(AttrGrammarName, "Rust"),
				attribute.Int(AttrParseNodes, 42),
			},
			Status: sdktrace.Status{Code: codes.Error, Description: "boom"},
		},
		{Name: SpanGrammarBuild, StartTime: start, EndTime: start},
	}
	spans := []sdktrace.ReadOnlySpan{stubs[0].Snapshot(), stubs[1].Snapshot()}
	require.NoError(t, exp.ExportSpans(context.Background(), spans))
	require.NoError(t, exp.Shutdown(context.Background()))

	recs := readRecords(t, path)
	require.Len(t, recs, 2)
	require.Equal(t, SpanParse, recs[0].Name)
	require.Equal(t, "ERROR", recs[0].Status)
	require.Equal(t, "boom", recs[0].StatusMsg)
	require.InDelta(t, 1.5, recs[0].DurationMs, 0.001)
	require.Equal(t, "Rust", recs[0].Attributes[AttrGrammarName])
	require.EqualValues(t, 42, recs[0].Attributes[AttrParseNodes])
	require.Equal(t, "UNSET", recs[1].Status)
	require.Empty(t, recs[1].Attributes)
}

func TestFileExporter_AppendsAndShutsDown(t *testing.T) {
	path := filepath.Join(t.TempDir(), "traces.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(`{"name":"old"}`+"\n"), 0600))

	exp, err := NewFileExporter(path)
	require.NoError(t, err)
	stub := tracetest.SpanStub{Name: "new"}
	require.NoError(t, exp.ExportSpans(context.Background(), []sdktrace.ReadOnlySpan{stub.Snapshot()}))
	require.NoError(t, exp.ExportSpans(context.Background(), nil))
	require.NoError(t, exp.Shutdown(context.Background()))
	require.NoError(t, exp.Shutdown(context.Background()), "second shutdown is a no-op")

	require.Error(t, exp.ExportSpans(context.Background(), []sdktrace.ReadOnlySpan{stub.Snapshot()}))

	recs := readRecords(t, path)
	require.Len(t, recs, 2)
	require.Equal(t, "old", recs[0].Name)
	require.Equal(t, "new", recs[1].Name)
}
