package scope

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScope_HasPrefix(t *testing.T) {
	tests := []struct {
		scope  string
		prefix string
		want   bool
	}{
		{"keyword.control.rust", "keyword", true},
		{"keyword.control.rust", "keyword.control", true},
		{"keyword.control.rust", "keyword.control.rust", true},
		{"keywords.control", "keyword", false},
		{"keyword.control", "keyword.control.rust", false},
		{"string", "", true},
		{"", "string", false},
	}
	for _, tt := range tests {
		t.Run(tt.scope+"/"+tt.prefix, func(t *testing.T) {
			require.Equal(t, tt.want, New(tt.scope).HasPrefix(tt.prefix))
		})
	}
}

func TestScope_Atoms(t *testing.T) {
	require.Equal(t, []string{"string", "quoted", "double"}, New("string.quoted.double").Atoms())
	require.Nil(t, New("").Atoms())
}

func TestPtr(t *testing.T) {
	require.Nil(t, Ptr("  "))
	p := Ptr(" comment.line ")
	require.NotNil(t, p)
	require.Equal(t, "comment.line", p.String())
}

func TestSame(t *testing.T) {
	require.True(t, Same(nil, nil))
	require.False(t, Same(nil, Ptr("a")))
	require.True(t, Same(Ptr("a.b"), Ptr("a.b")))
	require.False(t, Same(Ptr("a.b"), Ptr("a.c")))
	require.Equal(t, "", String(nil))
}
