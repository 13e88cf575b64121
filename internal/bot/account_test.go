package bot

import (
	"context"
	"database/sql"
	"reflect"
	"testing"

	mock_auth "github.com/Adrien7782/BankVocabulary/internal/auth/mock"
	mock_bot "github.com/Adrien7782/BankVocabulary/internal/bot/mock"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// fillUserRow populates the auth package's unexported row struct through its
// exported fields, the way sqlx would.
func fillUserRow(t *testing.T, dest interface{}, id, email, passwordHash string) {
	t.Helper()

	row := reflect.ValueOf(dest).Elem()
	require.Equal(t, reflect.Struct, row.Kind())
	row.FieldByName("ID").SetString(id)
	row.FieldByName("Email").SetString(email)
	row.FieldByName("PasswordHash").SetString(passwordHash)
}

func TestAccount_Login_Usage(t *testing.T) {
	t.Parallel()

	ws := newTestWorkspace(t)
	bot := &mock_bot.MockBot{}
	account := NewAccountAPI(bot)

	account.login(command("login", "just-an-email"), ws)
	assert.Equal(t, "Usage: /login EMAIL PASSWORD", lastText(t, bot))
}

func TestAccount_Login_InvalidCredentials(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	db := mock_auth.NewMockQueryI(ctrl)
	db.EXPECT().
		GetContext(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(sql.ErrNoRows)

	ws := newTestWorkspaceWithAuth(t, db)
	bot := &mock_bot.MockBot{}
	account := NewAccountAPI(bot)

	account.login(command("login", "a@b.c secret"), ws)

	assert.Equal(t, "❌ invalid email or password", lastText(t, bot))
	assert.Equal(t, "", ws.Scope.Scope())
}

func TestAccount_Login_Success(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	hash, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
	require.NoError(t, err)

	db := mock_auth.NewMockQueryI(ctrl)
	db.EXPECT().
		GetContext(gomock.Any(), gomock.Any(), gomock.Any(), "a@b.c").
		DoAndReturn(func(_ context.Context, dest interface{}, _ string, _ ...interface{}) error {
			fillUserRow(t, dest, "u1", "a@b.c", string(hash))
			return nil
		})

	ws := newTestWorkspaceWithAuth(t, db)
	bot := &mock_bot.MockBot{}
	account := NewAccountAPI(bot)

	account.login(command("login", "a@b.c secret"), ws)

	text := lastText(t, bot)
	assert.Contains(t, text, "Signed in as a@b.c")
	assert.Contains(t, text, "/verify", "unverified account gets the verification hint")
	assert.Equal(t, "u1", ws.Scope.Scope())
}

func TestAccount_Register(t *testing.T) {
	t.Parallel()

	t.Run("usage", func(t *testing.T) {
		t.Parallel()

		ws := newTestWorkspace(t)
		bot := &mock_bot.MockBot{}
		account := NewAccountAPI(bot)

		account.register(command("register", ""), ws)
		assert.Equal(t, "Usage: /register EMAIL PASSWORD", lastText(t, bot))
	})

	t.Run("email taken", func(t *testing.T) {
		t.Parallel()

		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		db := mock_auth.NewMockQueryI(ctrl)
		db.EXPECT().
			GetContext(gomock.Any(), gomock.Any(), gomock.Any(), "a@b.c").
			DoAndReturn(func(_ context.Context, dest interface{}, _ string, _ ...interface{}) error {
				*dest.(*int) = 1
				return nil
			})

		ws := newTestWorkspaceWithAuth(t, db)
		bot := &mock_bot.MockBot{}
		account := NewAccountAPI(bot)

		account.register(command("register", "a@b.c secret"), ws)
		assert.Contains(t, lastText(t, bot), "already registered")
	})

	t.Run("success", func(t *testing.T) {
		t.Parallel()

		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		db := mock_auth.NewMockQueryI(ctrl)
		db.EXPECT().
			GetContext(gomock.Any(), gomock.Any(), gomock.Any(), "a@b.c").
			DoAndReturn(func(_ context.Context, dest interface{}, _ string, _ ...interface{}) error {
				*dest.(*int) = 0
				return nil
			})
		db.EXPECT().
			ExecContext(gomock.Any(), gomock.Any(), gomock.Any(), "a@b.c", gomock.Any()).
			Return(nil, nil)

		ws := newTestWorkspaceWithAuth(t, db)
		bot := &mock_bot.MockBot{}
		account := NewAccountAPI(bot)

		account.register(command("register", "a@b.c secret"), ws)

		assert.Contains(t, lastText(t, bot), "Account created")
		assert.Equal(t, "", ws.Scope.Scope(), "registration must not sign the user in")
	})
}

func TestAccount_Logout(t *testing.T) {
	t.Parallel()

	ws := newTestWorkspace(t)
	bot := &mock_bot.MockBot{}
	account := NewAccountAPI(bot)

	account.logout(command("logout", ""), ws)

	assert.Contains(t, lastText(t, bot), "Signed out")
	assert.Equal(t, "", ws.Scope.Scope())
	assert.Len(t, ws.Mirror.Cards(), 4, "local deck stays available")
}

func TestAccount_Verify_RequiresSignIn(t *testing.T) {
	t.Parallel()

	ws := newTestWorkspace(t)
	bot := &mock_bot.MockBot{}
	account := NewAccountAPI(bot)

	account.verify(command("verify", ""), ws)
	assert.Contains(t, lastText(t, bot), "Sign in first")
}
