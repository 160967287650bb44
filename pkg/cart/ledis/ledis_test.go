package ledis

import (
	"context"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"cartflow/pkg/cart"
)

func TestStorage(t *testing.T) {
	Convey("Given a fresh ledis data dir", t, func() {
		ctx := context.Background()
		dir := t.TempDir()
		s, err := Open(dir)
		So(err, ShouldBeNil)
		Reset(func() { s.Close() })

		Convey("an unknown key is not found", func() {
			_, found, err := s.Get(ctx, cart.DefaultKey)
			So(err, ShouldBeNil)
			So(found, ShouldBeFalse)
		})

		Convey("a written value can be read back", func() {
			So(s.Set(ctx, cart.DefaultKey, `[{"id":"p1","quantity":3}]`), ShouldBeNil)
			v, found, err := s.Get(ctx, cart.DefaultKey)
			So(err, ShouldBeNil)
			So(found, ShouldBeTrue)
			So(v, ShouldEqual, `[{"id":"p1","quantity":3}]`)
		})

		Convey("a cart store persists through it", func() {
			store := cart.NewStore(s)
			So(store.AddToCart(ctx, cart.Product{ID: "p1", Title: "Mug"}), ShouldBeNil)
			So(store.Increment(ctx, "p1"), ShouldBeNil)

			restored := cart.NewStore(s)
			So(restored.Load(ctx), ShouldBeNil)
			So(restored.Items(), ShouldHaveLength, 1)
			So(restored.Items()[0].Quantity, ShouldEqual, 2)
		})
	})
}

func TestOpenRequiresDir(t *testing.T) {
	if _, err := Open(""); err == nil {
		t.Fatal("expected error for empty dir")
	}
}
