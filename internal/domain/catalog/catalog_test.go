package catalog_test

import (
	"context"
	"errors"
	"testing"

	"github.com/okian/hackbite/internal/domain/catalog"
	"github.com/okian/hackbite/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

type setting struct {
	raw string
	typ model.SettingType
}

type fakeStore struct {
	settings   map[string]setting
	hackathons map[int64]model.Hackathon
}

func (f *fakeStore) ListHackathons(context.Context, string) ([]model.Hackathon, error) {
	return nil, nil
}

func (f *fakeStore) GetHackathon(_ context.Context, id int64) (model.Hackathon, error) {
	h, ok := f.hackathons[id]
	if !ok {
		return model.Hackathon{}, model.ErrNotFound
	}
	return h, nil
}

func (f *fakeStore) SkillCategories(context.Context) ([]model.SkillCategory, error) { return nil, nil }

func (f *fakeStore) SkillsByCategory(context.Context, int64) ([]model.SkillCount, error) {
	return nil, nil
}

func (f *fakeStore) Setting(_ context.Context, key string) (string, model.SettingType, error) {
	s, ok := f.settings[key]
	if !ok {
		return "", "", model.ErrNotFound
	}
	return s.raw, s.typ, nil
}

func (f *fakeStore) PutSetting(_ context.Context, key, value string, t model.SettingType) error {
	f.settings[key] = setting{raw: value, typ: t}
	return nil
}

func TestSettings(t *testing.T) {
	ctx := context.Background()

	Convey("Given a catalogue service", t, func() {
		store := &fakeStore{settings: map[string]setting{}, hackathons: map[int64]model.Hackathon{}}
		svc := catalog.New(store)

		Convey("When an integer setting is stored", func() {
			got, err := svc.PutSetting(ctx, "max_team_size", float64(6), "integer")
			So(err, ShouldBeNil)
			So(got.Value, ShouldEqual, int64(6))

			Convey("Then it reads back typed", func() {
				s, err := svc.Setting(ctx, "max_team_size")
				So(err, ShouldBeNil)
				So(s.Type, ShouldEqual, model.SettingInteger)
				So(s.Value, ShouldEqual, int64(6))
			})
		})

		Convey("When no type is given", func() {
			got, err := svc.PutSetting(ctx, "motd", "hello", "")
			So(err, ShouldBeNil)
			So(got.Type, ShouldEqual, model.SettingString)
		})

		Convey("When the value is missing", func() {
			_, err := svc.PutSetting(ctx, "motd", nil, "string")
			So(errors.Is(err, catalog.ErrMissingValue), ShouldBeTrue)
		})

		Convey("When the type is unknown", func() {
			_, err := svc.PutSetting(ctx, "motd", "x", "float")
			So(errors.Is(err, model.ErrInvalidSettingType), ShouldBeTrue)
		})

		Convey("When an integer value is not numeric", func() {
			_, err := svc.PutSetting(ctx, "limit", "many", "integer")
			So(errors.Is(err, model.ErrInvalidSettingType), ShouldBeTrue)
		})

		Convey("When the setting does not exist", func() {
			_, err := svc.Setting(ctx, "missing")
			So(errors.Is(err, catalog.ErrSettingNotFound), ShouldBeTrue)
		})

		Convey("When the hackathon does not exist", func() {
			_, err := svc.Hackathon(ctx, 3)
			So(errors.Is(err, catalog.ErrHackathonNotFound), ShouldBeTrue)
		})
	})
}
