package browser

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kuitang/buggy-e2e/internal/pages"
)

// The password cases change the secondary account, so they only run against
// the stand-in.
func TestBrowser_ChangePassword(t *testing.T) {
	env := SetupBrowserTestEnv(t)
	if env.App == nil {
		t.Skip("password change cases run against the stand-in only")
	}

	user := env.Config.Users.Secondary
	some := pages.Some[string]

	cases := []struct {
		name string
		in   pages.PasswordInput
		want func(*pages.ProfilePage) pages.Element
	}{
		{
			name: "valid inputs",
			in:   pages.PasswordInput{Current: some(user.Password), New: some(user.Password)},
			want: func(p *pages.ProfilePage) pages.Element { return p.MessageProfileSaved },
		},
		{
			name: "confirm password empty",
			in:   pages.PasswordInput{Current: some("abc"), New: some("same"), Confirm: some(""), SkipSave: true},
			want: func(p *pages.ProfilePage) pages.Element { return p.MessagePasswordsDoNotMatch },
		},
		{
			name: "blank current password",
			in:   pages.PasswordInput{Current: some(""), New: some("12345678Go@")},
			want: func(p *pages.ProfilePage) pages.Element { return p.MessageCurrentPasswordLength },
		},
		{
			name: "short current password",
			in:   pages.PasswordInput{Current: some("abc"), New: some("12345678Go@")},
			want: func(p *pages.ProfilePage) pages.Element { return p.MessageCurrentPasswordLength },
		},
		{
			name: "incorrect current password",
			in:   pages.PasswordInput{Current: some("12345678"), New: some("12345678Go@")},
			want: func(p *pages.ProfilePage) pages.Element { return p.MessageIncorrectCurrentPassword },
		},
		{
			name: "only numeric new password",
			in:   pages.PasswordInput{Current: some(user.Password), New: some("123456789")},
			want: func(p *pages.ProfilePage) pages.Element { return p.MessageNewPasswordLowercase },
		},
		{
			name: "new password without uppercase",
			in:   pages.PasswordInput{Current: some(user.Password), New: some("123456789a")},
			want: func(p *pages.ProfilePage) pages.Element { return p.MessageNewPasswordUppercase },
		},
		{
			name: "new password without symbol",
			in:   pages.PasswordInput{Current: some(user.Password), New: some("123456789aB")},
			want: func(p *pages.ProfilePage) pages.Element { return p.MessageNewPasswordSymbol },
		},
		{
			name: "new password without number",
			in:   pages.PasswordInput{Current: some(user.Password), New: some("Abcdefgh@")},
			want: func(p *pages.ProfilePage) pages.Element { return p.MessageNewPasswordNumeric },
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			profile := openProfile(t, env, user.Username, user.Password)

			_, err := profile.UpdatePassword(tc.in)
			require.NoError(t, err)
			require.NoError(t, profile.AssertVisible(tc.want(profile)))
		})
	}

	// A non-empty confirm always follows the new password, so a differing
	// confirmation is typed into the field directly.
	t.Run("new password not matching", func(t *testing.T) {
		profile := openProfile(t, env, user.Username, user.Password)

		_, err := profile.UpdatePassword(pages.PasswordInput{Current: some("abc"), New: some("same"), SkipSave: true})
		require.NoError(t, err)
		require.NoError(t, profile.Fill(profile.ConfirmPasswordInput, "not-same"))
		require.NoError(t, profile.AssertVisible(profile.MessagePasswordsDoNotMatch))
	})
}
