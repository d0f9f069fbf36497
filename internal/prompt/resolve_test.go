package prompt

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeParams struct {
	val   string
	found bool
	err   error
	name  string
}

func (f *fakeParams) LookupParameter(_ context.Context, name string) (string, bool, error) {
	f.name = name
	return f.val, f.found, f.err
}

func TestResolve_DefaultsToAssistantProfile(t *testing.T) {
	sel, err := Resolve(context.Background(), Sources{})
	require.NoError(t, err)
	require.Equal(t, OriginProfile, sel.Origin)
	require.Equal(t, "You are a helpful AI assistant. Keep responses concise.", sel.Text)
}

func TestResolve_NamedProfile(t *testing.T) {
	sel, err := Resolve(context.Background(), Sources{Profile: " Portfolio "})
	require.NoError(t, err)
	require.Contains(t, sel.Text, "Canned answers:")
	require.Contains(t, sel.Text, "no memory of earlier messages")
}

func TestResolve_UnknownProfile(t *testing.T) {
	_, err := Resolve(context.Background(), Sources{Profile: "pirate"})
	require.ErrorContains(t, err, `unknown profile "pirate"`)
	require.ErrorContains(t, err, "assistant, portfolio")
}

func TestResolve_InlineWins(t *testing.T) {
	params := &fakeParams{val: "from ssm", found: true}
	sel, err := Resolve(context.Background(), Sources{Inline: " Be terse. ", Params: params, ParamName: "/p/system-prompt", Profile: "pirate"})
	require.NoError(t, err)
	require.Equal(t, Selection{Text: "Be terse.", Origin: OriginInline}, sel)
	require.Empty(t, params.name)
}

func TestResolve_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompt.txt")
	require.NoError(t, os.WriteFile(path, []byte("\nAnswer in French.\n"), 0o600))

	sel, err := Resolve(context.Background(), Sources{File: path})
	require.NoError(t, err)
	require.Equal(t, Selection{Text: "Answer in French.", Origin: OriginFile}, sel)
}

func TestResolve_FileErrors(t *testing.T) {
	_, err := Resolve(context.Background(), Sources{File: filepath.Join(t.TempDir(), "missing.txt")})
	require.Error(t, err)

	empty := filepath.Join(t.TempDir(), "empty.txt")
	require.NoError(t, os.WriteFile(empty, []byte("  \n"), 0o600))
	_, err = Resolve(context.Background(), Sources{File: empty})
	require.ErrorContains(t, err, "empty")
}

func TestResolve_ParamStore(t *testing.T) {
	params := &fakeParams{val: "From SSM.", found: true}
	sel, err := Resolve(context.Background(), Sources{Params: params, ParamName: "/chat-relay/system-prompt"})
	require.NoError(t, err)
	require.Equal(t, Selection{Text: "From SSM.", Origin: OriginParamStore}, sel)
	require.Equal(t, "/chat-relay/system-prompt", params.name)
}

func TestResolve_ParamStoreMissingFallsBackToProfile(t *testing.T) {
	sel, err := Resolve(context.Background(), Sources{Params: &fakeParams{}, ParamName: "/p/system-prompt", Profile: "portfolio"})
	require.NoError(t, err)
	require.Equal(t, OriginProfile, sel.Origin)
}

func TestResolve_ParamStoreError(t *testing.T) {
	_, err := Resolve(context.Background(), Sources{Params: &fakeParams{err: errors.New("access denied")}, ParamName: "/p/system-prompt"})
	require.ErrorContains(t, err, "access denied")
}
