package dedupe

import (
	"context"
	"errors"
	"testing"
)

func TestListObjectsPrefixAndPagination(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	for _, key := range []string{"a/1", "a/2", "a/3", "b/1"} {
		writeTestObject(t, e, key, 50, 12)
	}

	res, err := e.ListObjects(ctx, "a/", 0, 2)
	if err != nil {
		t.Fatalf("ListObjects: %v", err)
	}
	if res.Total != 3 {
		t.Fatalf("Total = %d, want 3", res.Total)
	}
	if len(res.Objects) != 2 {
		t.Fatalf("page size = %d, want 2", len(res.Objects))
	}

	res2, err := e.ListObjects(ctx, "a/", 2, 2)
	if err != nil {
		t.Fatalf("ListObjects page 2: %v", err)
	}
	if len(res2.Objects) != 1 {
		t.Fatalf("page 2 size = %d, want 1", len(res2.Objects))
	}
}

func TestListObjectsRejectsOutOfRangeMaxResults(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	if _, err := e.ListObjects(ctx, "", 0, 0); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("maxResults=0 = %v, want ErrInvalidArgument", err)
	}
	if _, err := e.ListObjects(ctx, "", 0, 101); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("maxResults=101 = %v, want ErrInvalidArgument", err)
	}
	if _, err := e.ListObjects(ctx, "", -1, 10); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("startIndex=-1 = %v, want ErrInvalidArgument", err)
	}
}
