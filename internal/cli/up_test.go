package cli

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/creativeprojects/go-selfupdate"
)

type fakeSource struct {
	found   bool
	err     error
	updated bool
}

func (f *fakeSource) DetectLatest(ctx context.Context, repository selfupdate.Repository) (*selfupdate.Release, bool, error) {
	return nil, f.found, f.err
}

func (f *fakeSource) UpdateTo(ctx context.Context, rel *selfupdate.Release, cmdPath string) error {
	f.updated = true
	return nil
}

func useSource(t *testing.T, src releaseSource) {
	t.Helper()
	prev := newReleaseSource
	newReleaseSource = func() (releaseSource, error) { return src, nil }
	t.Cleanup(func() { newReleaseSource = prev })
}

func TestUpNoRelease(t *testing.T) {
	src := &fakeSource{}
	useSource(t, src)

	out, err := run(t, "up")
	if err == nil || !strings.Contains(err.Error(), "no release found") {
		t.Fatalf("err = %v, want no release found", err)
	}
	if strings.Contains(out, "Updated") || src.updated {
		t.Errorf("update ran without a release: %q", out)
	}
}

func TestUpDetectError(t *testing.T) {
	offline := errors.New("offline")
	useSource(t, &fakeSource{err: offline})

	if _, err := run(t, "up"); !errors.Is(err, offline) {
		t.Errorf("err = %v, want wrapped %v", err, offline)
	}
}

func TestUpSourceError(t *testing.T) {
	prev := newReleaseSource
	newReleaseSource = func() (releaseSource, error) { return nil, errors.New("no token") }
	t.Cleanup(func() { newReleaseSource = prev })

	if _, err := run(t, "up"); err == nil || err.Error() != "no token" {
		t.Errorf("err = %v, want no token", err)
	}
}
