package background_test

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"testing"

	"github.com/okian/gradecard/internal/domain/background"
	. "github.com/smartystreets/goconvey/convey"
	"go.uber.org/goleak"
)

// fakeProber fails for ids in broken and blocks on gate when set.
type fakeProber struct {
	mu      sync.Mutex
	broken  map[string]bool
	gate    chan struct{}
	entered chan struct{}
	probes  int
}

func (p *fakeProber) Probe(ctx context.Context, e background.Entry) error {
	p.mu.Lock()
	p.probes++
	gate, entered := p.gate, p.entered
	broken := p.broken[e.ID]
	p.mu.Unlock()

	if entered != nil {
		entered <- struct{}{}
	}
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if broken {
		return errors.New("image missing")
	}
	return nil
}

// memPrefs is an in-memory PreferenceStore.
type memPrefs struct {
	mu     sync.Mutex
	values map[string]string
	putErr error
}

func (m *memPrefs) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *memPrefs) Put(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.putErr != nil {
		return m.putErr
	}
	if m.values == nil {
		m.values = make(map[string]string)
	}
	m.values[key] = value
	return nil
}

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestRotator_New(t *testing.T) {
	Convey("Given no entries", t, func() {
		_, err := background.New(nil, &fakeProber{}, nil)
		So(err, ShouldEqual, background.ErrNoEntries)
	})
}

func TestRotator_Next(t *testing.T) {
	Convey("Given a rotator over the default entries", t, func() {
		ctx := context.Background()
		prober := &fakeProber{}
		prefs := &memPrefs{}
		r, err := background.New(background.DefaultEntries(), prober, prefs)
		So(err, ShouldBeNil)

		Convey("Then it starts idle with no current entry", func() {
			_, ok := r.Current()
			So(ok, ShouldBeFalse)
			So(r.State(), ShouldEqual, background.Idle)
		})

		Convey("When advancing from nothing", func() {
			e, err := r.Next(ctx)

			Convey("Then the first entry becomes current and is persisted", func() {
				So(err, ShouldBeNil)
				So(e.ID, ShouldEqual, "bocchi")
				cur, ok := r.Current()
				So(ok, ShouldBeTrue)
				So(cur, ShouldResemble, e)
				So(prefs.values[background.PreferenceKey], ShouldEqual, "bocchi")
			})
		})

		Convey("When advancing past the end", func() {
			var ids []string
			for i := 0; i < 5; i++ {
				e, err := r.Next(ctx)
				So(err, ShouldBeNil)
				ids = append(ids, e.ID)
			}

			Convey("Then it wraps around modulo four", func() {
				So(ids, ShouldResemble, []string{"bocchi", "kita", "ryo", "nijika", "bocchi"})
				So(r.State(), ShouldEqual, background.Idle)
			})
		})

		Convey("When the next asset is unavailable", func() {
			_, err := r.Next(ctx)
			So(err, ShouldBeNil)
			prober.broken = map[string]bool{"kita": true}

			_, err = r.Next(ctx)

			Convey("Then it reports an asset error and keeps the prior entry", func() {
				var ae *background.AssetError
				So(errors.As(err, &ae), ShouldBeTrue)
				So(ae.Entry.ID, ShouldEqual, "kita")
				So(errors.Is(err, background.ErrAssetUnavailable), ShouldBeTrue)

				cur, _ := r.Current()
				So(cur.ID, ShouldEqual, "bocchi")
				So(prefs.values[background.PreferenceKey], ShouldEqual, "bocchi")
				So(r.State(), ShouldEqual, background.Idle)
			})
		})

		Convey("When saving the preference fails", func() {
			prefs.putErr = errors.New("disk full")
			e, err := r.Next(ctx)

			Convey("Then the change still succeeds", func() {
				So(err, ShouldBeNil)
				cur, _ := r.Current()
				So(cur, ShouldResemble, e)
			})
		})
	})
}

func TestRotator_Busy(t *testing.T) {
	Convey("Given a rotator whose probe is in flight", t, func() {
		ctx := context.Background()
		prober := &fakeProber{gate: make(chan struct{}), entered: make(chan struct{}, 1)}
		r, err := background.New(background.DefaultEntries(), prober, nil)
		So(err, ShouldBeNil)

		type result struct {
			e   background.Entry
			err error
		}
		done := make(chan result, 1)
		go func() {
			e, err := r.Next(ctx)
			done <- result{e, err}
		}()
		<-prober.entered

		Convey("Then concurrent requests are rejected, not queued", func() {
			So(r.State(), ShouldEqual, background.Loading)
			_, err := r.Next(ctx)
			So(err, ShouldEqual, background.ErrBusy)
			_, err = r.Random(ctx)
			So(err, ShouldEqual, background.ErrBusy)
			_, err = r.Select(ctx, 2)
			So(err, ShouldEqual, background.ErrBusy)

			close(prober.gate)
			res := <-done
			So(res.err, ShouldBeNil)
			So(res.e.ID, ShouldEqual, "bocchi")
			So(r.State(), ShouldEqual, background.Idle)
			So(prober.probes, ShouldEqual, 1)
		})
	})
}

func TestRotator_Init(t *testing.T) {
	Convey("Given a persisted preference", t, func() {
		ctx := context.Background()
		prefs := &memPrefs{values: map[string]string{background.PreferenceKey: "ryo"}}
		r, err := background.New(background.DefaultEntries(), &fakeProber{}, prefs)
		So(err, ShouldBeNil)

		Convey("When initializing", func() {
			e, err := r.Init(ctx)

			Convey("Then the persisted entry is restored", func() {
				So(err, ShouldBeNil)
				So(e.ID, ShouldEqual, "ryo")
			})

			Convey("And the next change continues from it", func() {
				e, err := r.Next(ctx)
				So(err, ShouldBeNil)
				So(e.ID, ShouldEqual, "nijika")
			})
		})
	})

	Convey("Given a stale preference", t, func() {
		ctx := context.Background()
		prefs := &memPrefs{values: map[string]string{background.PreferenceKey: "gone"}}
		r, err := background.New(background.DefaultEntries(), &fakeProber{}, prefs,
			background.WithRand(rand.New(rand.NewSource(1))))
		So(err, ShouldBeNil)

		Convey("Then init falls back to a random entry", func() {
			e, err := r.Init(ctx)
			So(err, ShouldBeNil)
			So(e.ID, ShouldBeIn, []string{"bocchi", "kita", "ryo", "nijika"})
			So(prefs.values[background.PreferenceKey], ShouldEqual, e.ID)
		})
	})
}

func TestRotator_SelectID(t *testing.T) {
	Convey("Given a rotator", t, func() {
		ctx := context.Background()
		r, _ := background.New(background.DefaultEntries(), &fakeProber{}, nil)

		Convey("Then selecting a known id works", func() {
			e, err := r.SelectID(ctx, "nijika")
			So(err, ShouldBeNil)
			So(e.Color, ShouldEqual, "#F0E68C")
		})

		Convey("And unknown ids or indexes are rejected", func() {
			_, err := r.SelectID(ctx, "nobody")
			So(err, ShouldEqual, background.ErrUnknownEntry)
			_, err = r.Select(ctx, 9)
			So(err, ShouldEqual, background.ErrUnknownEntry)
			So(r.State(), ShouldEqual, background.Idle)
		})
	})
}

func TestRotator_Preload(t *testing.T) {
	Convey("Given one broken asset", t, func() {
		prober := &fakeProber{broken: map[string]bool{"ryo": true}}
		r, _ := background.New(background.DefaultEntries(), prober, nil)

		Convey("When preloading", func() {
			results := r.Preload(context.Background())

			Convey("Then every entry is probed and only the broken one fails", func() {
				So(len(results), ShouldEqual, 4)
				for _, res := range results {
					if res.Entry.ID == "ryo" {
						So(res.Err, ShouldNotBeNil)
					} else {
						So(res.Err, ShouldBeNil)
					}
				}
				_, ok := r.Current()
				So(ok, ShouldBeFalse)
			})
		})
	})
}
