package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fenilsonani/dupsweep/internal/models"
)

func TestSlicePagerPages(t *testing.T) {
	items := make([]models.Item, 5)
	for i := range items {
		items[i] = models.Item{ID: string(rune('a' + i))}
	}

	p := NewSlicePager(items, 2)
	ctx := context.Background()

	var sizes []int
	for {
		page, err := p.Next(ctx)
		if errors.Is(err, ErrDone) {
			break
		}
		if err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		sizes = append(sizes, len(page))
	}

	want := []int{2, 2, 1}
	if len(sizes) != len(want) {
		t.Fatalf("page sizes = %v, want %v", sizes, want)
	}
	for i := range want {
		if sizes[i] != want[i] {
			t.Errorf("page %d size = %d, want %d", i, sizes[i], want[i])
		}
	}
}

func TestSlicePagerEmpty(t *testing.T) {
	p := NewSlicePager(nil, 0)
	if _, err := p.Next(context.Background()); !errors.Is(err, ErrDone) {
		t.Errorf("Next on empty pager = %v, want ErrDone", err)
	}
}

func TestSlicePagerCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := NewSlicePager([]models.Item{{ID: "a"}}, 1)
	if _, err := p.Next(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Next on cancelled ctx = %v, want context.Canceled", err)
	}
}

func TestParseAuthorization(t *testing.T) {
	tests := []struct {
		in      string
		want    Authorization
		wantErr bool
	}{
		{"granted", AuthGranted, false},
		{"", AuthGranted, false},
		{"DENIED", AuthDenied, false},
		{" restricted ", AuthRestricted, false},
		{"maybe", AuthDenied, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAuthorization(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseAuthorization(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestAuthorizationAllowed(t *testing.T) {
	if !AuthGranted.Allowed() {
		t.Error("granted should be allowed")
	}
	if AuthDenied.Allowed() || AuthRestricted.Allowed() {
		t.Error("denied and restricted must not be allowed")
	}
}

func TestStaticAuthorizer(t *testing.T) {
	a := NewStaticAuthorizer(map[models.Category]Authorization{
		models.CategoryCalendarEvent: AuthDenied,
	})
	ctx := context.Background()

	got, err := a.Authorize(ctx, models.CategoryCalendarEvent)
	if err != nil || got != AuthDenied {
		t.Errorf("calendar = %v, %v; want denied", got, err)
	}

	got, _ = a.Authorize(ctx, models.CategoryPhoto)
	if got != AuthGranted {
		t.Errorf("unlisted category = %v, want granted", got)
	}

	a.Set(models.CategoryPhoto, AuthRestricted)
	got, _ = a.Authorize(ctx, models.CategoryPhoto)
	if got != AuthRestricted {
		t.Errorf("after Set = %v, want restricted", got)
	}
}

func TestCallWithTimeoutSuccess(t *testing.T) {
	got, err := CallWithTimeout(context.Background(), time.Second, func(ctx context.Context) (int, error) {
		return 42, nil
	})
	if err != nil || got != 42 {
		t.Errorf("got %d, %v; want 42, nil", got, err)
	}
}

func TestCallWithTimeoutExpires(t *testing.T) {
	block := make(chan struct{})
	defer close(block)

	_, err := CallWithTimeout(context.Background(), 20*time.Millisecond, func(ctx context.Context) (int, error) {
		<-block // ignores ctx on purpose
		return 0, nil
	})
	if !errors.Is(err, ErrTimeout) {
		t.Errorf("err = %v, want ErrTimeout", err)
	}
}

func TestCallWithTimeoutParentCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := CallWithTimeout(ctx, time.Minute, func(ctx context.Context) (int, error) {
		<-ctx.Done()
		return 0, ctx.Err()
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if errors.Is(err, ErrTimeout) {
		t.Error("parent cancellation must not be reported as a timeout")
	}
}

func TestCallWithTimeoutZeroDisables(t *testing.T) {
	called := false
	_, err := CallWithTimeout(context.Background(), 0, func(ctx context.Context) (struct{}, error) {
		called = true
		if _, ok := ctx.Deadline(); ok {
			t.Error("no deadline expected with zero timeout")
		}
		return struct{}{}, nil
	})
	if err != nil || !called {
		t.Errorf("called=%v err=%v", called, err)
	}
}

func TestCallWithTimeoutRecoversPanic(t *testing.T) {
	_, err := CallWithTimeout(context.Background(), time.Second, func(ctx context.Context) (int, error) {
		panic("boom")
	})
	if !errors.Is(err, ErrPanic) {
		t.Errorf("err = %v, want ErrPanic", err)
	}
}
