package account_test

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/okian/hackbite/internal/domain/account"
	"github.com/okian/hackbite/internal/domain/model"
	"github.com/okian/hackbite/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	if err := logger.Init(logger.WithOutput(io.Discard)); err != nil {
		panic(err)
	}
}

type memStore struct {
	users      map[int64]model.User
	hashes     map[string]string
	byEmail    map[string]int64
	activities []model.Activity
	nextID     int64
}

func newMemStore() *memStore {
	return &memStore{
		users:   map[int64]model.User{},
		hashes:  map[string]string{},
		byEmail: map[string]int64{},
	}
}

func (m *memStore) EmailExists(_ context.Context, email string) (bool, error) {
	_, ok := m.byEmail[email]
	return ok, nil
}

func (m *memStore) CreateUser(_ context.Context, reg model.Registration, hash, proficiency string) (model.User, error) {
	if _, ok := m.byEmail[reg.Email]; ok {
		return model.User{}, model.ErrConflict
	}
	m.nextID++
	u := model.User{
		ID:          m.nextID,
		Name:        reg.Name,
		Email:       reg.Email,
		ProfileLogo: reg.ProfileLogo,
		IsActive:    true,
		CreatedAt:   time.Now(),
		Profile:     &reg.Profile,
	}
	for _, s := range reg.Skills {
		u.Skills = append(u.Skills, model.UserSkill{Name: s, Proficiency: proficiency})
	}
	m.users[u.ID] = u
	m.byEmail[u.Email] = u.ID
	m.hashes[u.Email] = hash
	return u, nil
}

func (m *memStore) Credentials(_ context.Context, email string) (model.User, string, error) {
	id, ok := m.byEmail[email]
	if !ok {
		return model.User{}, "", model.ErrNotFound
	}
	return m.users[id], m.hashes[email], nil
}

func (m *memStore) ListUsers(context.Context, bool) ([]model.User, error) {
	out := make([]model.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, u)
	}
	return out, nil
}

func (m *memStore) GetUser(_ context.Context, id int64, _ bool) (model.User, error) {
	u, ok := m.users[id]
	if !ok || !u.IsActive {
		return model.User{}, model.ErrNotFound
	}
	return u, nil
}

func (m *memStore) UpdateProfileLogo(_ context.Context, id int64, logo string) error {
	u, ok := m.users[id]
	if !ok {
		return model.ErrNotFound
	}
	u.ProfileLogo = logo
	m.users[id] = u
	return nil
}

func (m *memStore) Statistics(context.Context) (model.Statistics, error) {
	return model.Statistics{TotalUsers: len(m.users)}, nil
}

func (m *memStore) Resume(context.Context, int64) (model.Resume, error) {
	return model.Resume{}, model.ErrNotFound
}

func (m *memStore) LogActivity(_ context.Context, a model.Activity) error {
	m.activities = append(m.activities, a)
	return nil
}

func (m *memStore) lastActivity() model.Activity {
	return m.activities[len(m.activities)-1]
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	Convey("Given an account service", t, func() {
		store := newMemStore()
		svc := account.New(store, account.WithCost(bcrypt.MinCost))

		Convey("When a valid user registers", func() {
			u, err := svc.Register(ctx, model.Registration{
				Name:        " Ada ",
				Email:       " Ada@Example.COM ",
				Password:    "secret1",
				ProfileLogo: "unicorn",
				Skills:      []string{"Go", " Go ", "", "React"},
			})

			Convey("Then the account is stored normalized", func() {
				So(err, ShouldBeNil)
				So(u.Name, ShouldEqual, "Ada")
				So(u.Email, ShouldEqual, "ada@example.com")
				So(u.ProfileLogo, ShouldEqual, account.DefaultLogo)
				So(u.Skills, ShouldHaveLength, 2)
				So(u.Skills[0].Proficiency, ShouldEqual, "intermediate")
				So(u.Profile.CommunicationPreference, ShouldEqual, "email")
				So(store.lastActivity().Type, ShouldEqual, model.ActivityRegistered)
			})

			Convey("Then the password is stored as a bcrypt hash", func() {
				hash := store.hashes["ada@example.com"]
				So(hash, ShouldNotEqual, "secret1")
				So(bcrypt.CompareHashAndPassword([]byte(hash), []byte("secret1")), ShouldBeNil)
			})

			Convey("Then registering the same email again conflicts", func() {
				_, err := svc.Register(ctx, model.Registration{Name: "B", Email: "ADA@example.com", Password: "another"})
				So(errors.Is(err, account.ErrEmailExists), ShouldBeTrue)
				So(store.lastActivity().Type, ShouldEqual, model.ActivityRegistrationFailed)
			})
		})

		Convey("When required fields are missing", func() {
			_, err := svc.Register(ctx, model.Registration{Email: "a@b.c", Password: "secret1"})
			So(errors.Is(err, account.ErrMissingFields), ShouldBeTrue)
		})

		Convey("When the email has no @", func() {
			_, err := svc.Register(ctx, model.Registration{Name: "A", Email: "nobody", Password: "secret1"})
			So(errors.Is(err, account.ErrInvalidEmail), ShouldBeTrue)
		})

		Convey("When the password is too short", func() {
			_, err := svc.Register(ctx, model.Registration{Name: "A", Email: "a@b.c", Password: "123"})
			So(errors.Is(err, account.ErrWeakPassword), ShouldBeTrue)
		})
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	Convey("Given a registered user", t, func() {
		store := newMemStore()
		svc := account.New(store, account.WithCost(bcrypt.MinCost))
		registered, err := svc.Register(ctx, model.Registration{Name: "Ada", Email: "ada@example.com", Password: "secret1"})
		So(err, ShouldBeNil)

		Convey("When logging in with the right password", func() {
			u, err := svc.Login(ctx, "ADA@example.com", "secret1", "127.0.0.1", "test")

			Convey("Then the user is returned and the login is audited", func() {
				So(err, ShouldBeNil)
				So(u.ID, ShouldEqual, registered.ID)
				a := store.lastActivity()
				So(a.Type, ShouldEqual, model.ActivityLogin)
				So(a.IPAddress, ShouldEqual, "127.0.0.1")
			})
		})

		Convey("When the password is wrong", func() {
			_, err := svc.Login(ctx, "ada@example.com", "wrong-pass", "", "")
			So(errors.Is(err, account.ErrInvalidCredentials), ShouldBeTrue)
			So(store.lastActivity().Type, ShouldEqual, model.ActivityLoginFailed)
		})

		Convey("When the email is unknown", func() {
			_, err := svc.Login(ctx, "ghost@example.com", "secret1", "", "")
			So(errors.Is(err, account.ErrInvalidCredentials), ShouldBeTrue)
		})

		Convey("When the account is inactive", func() {
			u := store.users[registered.ID]
			u.IsActive = false
			store.users[registered.ID] = u
			_, err := svc.Login(ctx, "ada@example.com", "secret1", "", "")
			So(errors.Is(err, account.ErrInvalidCredentials), ShouldBeTrue)
		})

		Convey("When credentials are blank", func() {
			_, err := svc.Login(ctx, "", "secret1", "", "")
			So(errors.Is(err, account.ErrMissingCredentials), ShouldBeTrue)
		})
	})
}

func TestProfileLogo(t *testing.T) {
	ctx := context.Background()

	Convey("Given a registered user", t, func() {
		store := newMemStore()
		svc := account.New(store, account.WithCost(bcrypt.MinCost))
		u, err := svc.Register(ctx, model.Registration{Name: "Ada", Email: "ada@example.com", Password: "secret1"})
		So(err, ShouldBeNil)

		Convey("When a known logo is chosen", func() {
			So(svc.UpdateProfileLogo(ctx, u.ID, "rocket"), ShouldBeNil)
			So(store.users[u.ID].ProfileLogo, ShouldEqual, "rocket")
			So(store.lastActivity().Type, ShouldEqual, model.ActivityProfileUpdated)
		})

		Convey("When an unknown logo is chosen", func() {
			err := svc.UpdateProfileLogo(ctx, u.ID, "unicorn")
			So(errors.Is(err, account.ErrInvalidLogo), ShouldBeTrue)
		})

		Convey("When the user does not exist", func() {
			err := svc.UpdateProfileLogo(ctx, 999, "rocket")
			So(errors.Is(err, account.ErrUserNotFound), ShouldBeTrue)
		})

		Convey("When fetching missing records", func() {
			_, err := svc.GetUser(ctx, 999, false)
			So(errors.Is(err, account.ErrUserNotFound), ShouldBeTrue)
			_, err = svc.Resume(ctx, u.ID)
			So(errors.Is(err, account.ErrResumeNotFound), ShouldBeTrue)
		})
	})

	Convey("Given the logo catalogue", t, func() {
		So(account.LogoNames(), ShouldResemble, []string{"abstract", "brain", "code", "default", "planet", "rocket", "user"})
		logos := account.Logos()
		logos["rocket"] = "tampered"
		So(account.Logos()["rocket"], ShouldStartWith, "<svg")
	})
}
