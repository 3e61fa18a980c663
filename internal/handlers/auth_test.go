package handlers_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/annfsu/internal/models"
)

func signupPayload(email, username, phone string) map[string]interface{} {
	return map[string]interface{}{
		"email":       email,
		"username":    username,
		"password":    "password123",
		"full_name":   "Ram Bahadur",
		"phone":       phone,
		"address":     "Kathmandu",
		"institution": "Tribhuvan University",
		"committee":   "central",
	}
}

func TestSignup(t *testing.T) {
	app, _, _ := newTestApp(t)

	t.Run("creates a public pending account and logs in", func(t *testing.T) {
		resp := doRequest(t, app, "POST", "/api/auth/signup", "",
			signupPayload("ram@example.com", "RamBahadur", "9800000001"))
		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		body := decodeBody(t, resp)
		assert.NotEmpty(t, body["token"])

		user := body["user"].(map[string]interface{})
		assert.Equal(t, models.RolePublic, user["role"])
		assert.Equal(t, models.StatusPending, user["status"])
		assert.Equal(t, "rambahadur", user["username"])
		assert.Nil(t, user["membership_id"])
	})

	t.Run("duplicate email conflicts", func(t *testing.T) {
		resp := doRequest(t, app, "POST", "/api/auth/signup", "",
			signupPayload("ram@example.com", "", "9800000002"))
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})

	t.Run("duplicate username conflicts regardless of casing", func(t *testing.T) {
		resp := doRequest(t, app, "POST", "/api/auth/signup", "",
			signupPayload("sita@example.com", "RAMBAHADUR", "9800000003"))
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})

	t.Run("duplicate phone conflicts", func(t *testing.T) {
		resp := doRequest(t, app, "POST", "/api/auth/signup", "",
			signupPayload("hari@example.com", "", "9800000001"))
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})

	t.Run("malformed username rejected", func(t *testing.T) {
		resp := doRequest(t, app, "POST", "/api/auth/signup", "",
			signupPayload("gita@example.com", "no spaces!", "9800000004"))
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("missing email rejected", func(t *testing.T) {
		payload := signupPayload("", "", "9800000005")
		resp := doRequest(t, app, "POST", "/api/auth/signup", "", payload)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestLogin(t *testing.T) {
	app, db, cfg := newTestApp(t)

	username := "bishal_k"
	user, _ := seedUser(t, db, cfg, models.RoleMember, models.StatusApproved)
	require.NoError(t, db.Model(user).Update("username", username).Error)

	t.Run("identifier classified as username", func(t *testing.T) {
		resp := doRequest(t, app, "POST", "/api/auth/login", "", map[string]string{
			"identifier": "Bishal_K",
			"password":   "password123",
		})
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		body := decodeBody(t, resp)
		assert.NotEmpty(t, body["token"])
	})

	t.Run("identifier classified as email", func(t *testing.T) {
		resp := doRequest(t, app, "POST", "/api/auth/login", "", map[string]string{
			"identifier": user.Email,
			"password":   "password123",
		})
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("legacy email login path", func(t *testing.T) {
		resp := doRequest(t, app, "POST", "/api/auth/login/email", "", map[string]string{
			"email":    user.Email,
			"password": "password123",
		})
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("wrong password is unauthenticated", func(t *testing.T) {
		resp := doRequest(t, app, "POST", "/api/auth/login", "", map[string]string{
			"identifier": user.Email,
			"password":   "wrong-pass",
		})
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("unknown identifier is unauthenticated", func(t *testing.T) {
		resp := doRequest(t, app, "POST", "/api/auth/login", "", map[string]string{
			"identifier": "nobody@example.com",
			"password":   "password123",
		})
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func TestDisabledAccountIsLockedOut(t *testing.T) {
	app, db, cfg := newTestApp(t)

	user, token := seedUser(t, db, cfg, models.RoleMember, models.StatusApproved)

	// Token works while the account is live.
	resp := doRequest(t, app, "GET", "/api/auth/me", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, db.Model(user).Update("status", models.StatusDisabled).Error)

	t.Run("previously valid token is rejected", func(t *testing.T) {
		resp := doRequest(t, app, "GET", "/api/auth/me", token, nil)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("password login is rejected", func(t *testing.T) {
		resp := doRequest(t, app, "POST", "/api/auth/login", "", map[string]string{
			"identifier": user.Email,
			"password":   "password123",
		})
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})
}

func TestMe(t *testing.T) {
	app, db, cfg := newTestApp(t)

	user, token := seedUser(t, db, cfg, models.RoleMember, models.StatusApproved)

	resp := doRequest(t, app, "GET", "/api/auth/me", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	got := body["user"].(map[string]interface{})
	assert.Equal(t, user.Email, got["email"])
	assert.Equal(t, user.FullName, got["full_name"])

	t.Run("missing token", func(t *testing.T) {
		resp := doRequest(t, app, "GET", "/api/auth/me", "", nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("garbage token", func(t *testing.T) {
		resp := doRequest(t, app, "GET", "/api/auth/me", "not-a-token", nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func TestOTPFlow(t *testing.T) {
	app, db, cfg := newTestApp(t)

	user, _ := seedUser(t, db, cfg, models.RoleMember, models.StatusApproved)

	t.Run("unregistered phone not found", func(t *testing.T) {
		resp := doRequest(t, app, "POST", "/api/auth/request-otp", "", map[string]string{
			"phone": "0000000000",
		})
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("request issues a challenge and a new request overwrites it", func(t *testing.T) {
		resp := doRequest(t, app, "POST", "/api/auth/request-otp", "", map[string]string{"phone": user.Phone})
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var first models.OTPCode
		require.NoError(t, db.Where("phone = ?", user.Phone).First(&first).Error)
		firstCode := first.Code

		resp = doRequest(t, app, "POST", "/api/auth/request-otp", "", map[string]string{"phone": user.Phone})
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var count int64
		require.NoError(t, db.Model(&models.OTPCode{}).Where("phone = ?", user.Phone).Count(&count).Error)
		assert.EqualValues(t, 1, count)

		var second models.OTPCode
		require.NoError(t, db.Where("phone = ?", user.Phone).First(&second).Error)

		if firstCode != second.Code {
			resp = doRequest(t, app, "POST", "/api/auth/verify-otp", "", map[string]string{
				"phone": user.Phone,
				"otp":   firstCode,
			})
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		}

		resp = doRequest(t, app, "POST", "/api/auth/verify-otp", "", map[string]string{
			"phone": user.Phone,
			"otp":   second.Code,
		})
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		body := decodeBody(t, resp)
		assert.NotEmpty(t, body["token"])
	})

	t.Run("consumed code cannot be replayed", func(t *testing.T) {
		var challenge models.OTPCode
		require.NoError(t, db.Where("phone = ?", user.Phone).First(&challenge).Error)
		assert.True(t, challenge.Used)

		resp := doRequest(t, app, "POST", "/api/auth/verify-otp", "", map[string]string{
			"phone": user.Phone,
			"otp":   challenge.Code,
		})
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("expired code is rejected", func(t *testing.T) {
		resp := doRequest(t, app, "POST", "/api/auth/request-otp", "", map[string]string{"phone": user.Phone})
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var challenge models.OTPCode
		require.NoError(t, db.Where("phone = ?", user.Phone).First(&challenge).Error)
		require.NoError(t, db.Model(&challenge).Update("expires_at", time.Now().Add(-time.Minute)).Error)

		resp = doRequest(t, app, "POST", "/api/auth/verify-otp", "", map[string]string{
			"phone": user.Phone,
			"otp":   challenge.Code,
		})
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func TestPasswordResetFlow(t *testing.T) {
	app, db, cfg := newTestApp(t)

	user, _ := seedUser(t, db, cfg, models.RoleMember, models.StatusApproved)

	resp := doRequest(t, app, "POST", "/api/auth/forgot-password", "", map[string]string{"phone": user.Phone})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	token := decodeBody(t, resp)["token"].(string)
	require.NotEmpty(t, token)

	var record models.PasswordReset
	require.NoError(t, db.Where("phone = ? AND token = ?", user.Phone, token).First(&record).Error)

	t.Run("reset before verification is rejected", func(t *testing.T) {
		resp := doRequest(t, app, "POST", "/api/auth/reset-password", "", map[string]string{
			"token":        token,
			"new_password": "newpass456",
		})
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("wrong code is rejected", func(t *testing.T) {
		wrong := "000000"
		if record.Code == wrong {
			wrong = "000001"
		}
		resp := doRequest(t, app, "POST", "/api/auth/verify-reset", "", map[string]string{
			"token": token,
			"code":  wrong,
		})
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("verify then reset updates the password", func(t *testing.T) {
		resp := doRequest(t, app, "POST", "/api/auth/verify-reset", "", map[string]string{
			"token": token,
			"code":  record.Code,
		})
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		resp = doRequest(t, app, "POST", "/api/auth/reset-password", "", map[string]string{
			"token":        token,
			"new_password": "newpass456",
		})
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		resp = doRequest(t, app, "POST", "/api/auth/login", "", map[string]string{
			"identifier": user.Email,
			"password":   "newpass456",
		})
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("used token cannot reset again", func(t *testing.T) {
		resp := doRequest(t, app, "POST", "/api/auth/reset-password", "", map[string]string{
			"token":        token,
			"new_password": "another789",
		})
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}
