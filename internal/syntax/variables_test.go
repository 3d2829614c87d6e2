package syntax

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolveVariables(t *testing.T) {
	tests := []struct {
		name    string
		vars    map[string]string
		want    map[string]string
		wantErr error
	}{
		{
			name: "plain values",
			vars: map[string]string{"ident": "[a-z]+"},
			want: map[string]string{"ident": "[a-z]+"},
		},
		{
			name: "variables referencing variables",
			vars: map[string]string{
				"alpha": "[a-z]",
				"ident": "{{alpha}}(?:{{alpha}}|{{digit}})*",
				"digit": "[0-9]",
			},
			want: map[string]string{
				"alpha": "[a-z]",
				"digit": "[0-9]",
				"ident": "[a-z](?:[a-z]|[0-9])*",
			},
		},
		{
			name:    "direct cycle",
			vars:    map[string]string{"a": "x{{a}}"},
			wantErr: ErrCyclicVariable,
		},
		{
			name:    "indirect cycle",
			vars:    map[string]string{"a": "{{b}}", "b": "{{c}}", "c": "{{a}}"},
			wantErr: ErrCyclicVariable,
		},
		{
			name:    "undefined reference",
			vars:    map[string]string{"a": "{{nope}}"},
			wantErr: ErrUnknownVariable,
		},
		{
			name: "regex quantifier braces are left alone",
			vars: map[string]string{"hex": "[0-9a-f]{2}"},
			want: map[string]string{"hex": "[0-9a-f]{2}"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveVariables(tt.vars)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestInterpolate(t *testing.T) {
	resolved := map[string]string{"ident": "[a-z_]+"}

	got, err := Interpolate(`\b{{ident}}\s*\(`, resolved)
	require.NoError(t, err)
	require.Equal(t, `\b[a-z_]+\s*\(`, got)

	_, err = Interpolate("{{missing}}", resolved)
	require.ErrorIs(t, err, ErrUnknownVariable)
}
