package services_test

import (
	"context"
	"sort"
	"strings"
	"testing"
	"time"

	"salescore-backend/internal/adapters/persistence/models"
	"salescore-backend/internal/config"
	"salescore-backend/internal/core/domain"
	"salescore-backend/internal/core/services"
	"salescore-backend/internal/pkg/jwt"
	"salescore-backend/internal/pkg/password"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// fakeUserRepo is an in-memory UserRepository for service tests
type fakeUserRepo struct {
	nextID      uint
	users       map[uint]*models.User
	assignments map[uint][]uint
	resetHash   map[uint]string
	resetExpiry map[uint]time.Time
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		users:       make(map[uint]*models.User),
		assignments: make(map[uint][]uint),
		resetHash:   make(map[uint]string),
		resetExpiry: make(map[uint]time.Time),
	}
}

func (r *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	user.Normalize()
	r.nextID++
	user.ID = r.nextID
	user.CreatedAt = time.Now().UTC()
	user.LastModified = user.CreatedAt
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id uint, includeRoles bool) (*models.User, error) {
	user, ok := r.users[id]
	if !ok || user.IsDeleted {
		return nil, gorm.ErrRecordNotFound
	}
	if includeRoles {
		user.Roles = r.rolesOf(id)
	}
	return user, nil
}

func (r *fakeUserRepo) GetByUsernameOrEmail(_ context.Context, usernameOrEmail string) (*models.User, error) {
	key := models.NormalizeKey(usernameOrEmail)
	for _, user := range r.users {
		if user.IsDeleted {
			continue
		}
		if user.NormalizedUsername == key || user.NormalizedEmail == key {
			user.Roles = r.rolesOf(user.ID)
			return user, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) Update(_ context.Context, user *models.User) error {
	if _, ok := r.users[user.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	user.Normalize()
	user.LastModified = time.Now().UTC()
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) List(_ context.Context, offset, limit int, filter string, _ []string) ([]*models.User, int64, error) {
	var matched []*models.User
	for _, user := range r.users {
		if user.IsDeleted {
			continue
		}
		if filter != "" {
			key := models.NormalizeKey(filter)
			if !strings.Contains(user.NormalizedUsername, key) && !strings.Contains(user.NormalizedEmail, key) {
				continue
			}
		}
		matched = append(matched, user)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })

	total := int64(len(matched))
	if offset >= len(matched) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}

func (r *fakeUserRepo) ExistsByID(_ context.Context, id uint) (bool, error) {
	user, ok := r.users[id]
	return ok && !user.IsDeleted, nil
}

func (r *fakeUserRepo) UsernameTaken(_ context.Context, username string, excludeID uint) (bool, error) {
	key := models.NormalizeKey(username)
	for _, user := range r.users {
		if !user.IsDeleted && user.ID != excludeID && user.NormalizedUsername == key {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeUserRepo) EmailTaken(_ context.Context, email string, excludeID uint) (bool, error) {
	key := models.NormalizeKey(email)
	for _, user := range r.users {
		if !user.IsDeleted && user.ID != excludeID && user.NormalizedEmail == key {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeUserRepo) ReplaceRoles(_ context.Context, userID uint, roleIDs []uint) error {
	r.assignments[userID] = append([]uint(nil), roleIDs...)
	return nil
}

func (r *fakeUserRepo) GeneratePasswordResetToken(_ context.Context, userID uint) (string, error) {
	user, ok := r.users[userID]
	if !ok || user.IsDeleted {
		return "", domain.ErrUserNotFound
	}
	token := uuid.NewString()
	r.resetHash[userID] = password.HashToken(token)
	r.resetExpiry[userID] = time.Now().UTC().Add(2 * time.Hour)
	return token, nil
}

func (r *fakeUserRepo) VerifyPasswordResetToken(_ context.Context, userID uint, token string) error {
	hash, ok := r.resetHash[userID]
	if !ok || hash != password.HashToken(token) {
		return domain.ErrResetTokenInvalid
	}
	if time.Now().UTC().After(r.resetExpiry[userID]) {
		return domain.ErrResetTokenInvalid
	}
	delete(r.resetHash, userID)
	delete(r.resetExpiry, userID)
	return nil
}

func (r *fakeUserRepo) rolesOf(userID uint) []models.UserRole {
	roles := make([]models.UserRole, 0, len(r.assignments[userID]))
	for _, roleID := range r.assignments[userID] {
		roles = append(roles, models.UserRole{
			UserID: userID,
			RoleID: roleID,
			Role:   models.Role{ID: roleID, Name: roleNames[roleID]},
		})
	}
	return roles
}

var roleNames = map[uint]string{
	models.RoleAdministrador: "Administrador",
	models.RoleVendedor:      "Vendedor",
	models.RoleCobrador:      "Cobrador",
}

// fakeRoleRepo is an in-memory RoleRepository seeded with the fixed catalog
type fakeRoleRepo struct{}

func (r *fakeRoleRepo) GetAll(_ context.Context) ([]models.Role, error) {
	ids := make([]uint, 0, len(roleNames))
	for id := range roleNames {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	roles := make([]models.Role, 0, len(ids))
	for _, id := range ids {
		roles = append(roles, models.Role{ID: id, Name: roleNames[id]})
	}
	return roles, nil
}

func (r *fakeRoleRepo) Exists(_ context.Context, id uint) (bool, error) {
	_, ok := roleNames[id]
	return ok, nil
}

// fakeRefreshTokenRepo is an in-memory RefreshTokenRepository that preserves
// the conditional single-transition semantics of MarkUsed
type fakeRefreshTokenRepo struct {
	nextID  uint
	byID    map[uint]*models.RefreshToken
	byToken map[string]*models.RefreshToken
}

func newFakeRefreshTokenRepo() *fakeRefreshTokenRepo {
	return &fakeRefreshTokenRepo{
		byID:    make(map[uint]*models.RefreshToken),
		byToken: make(map[string]*models.RefreshToken),
	}
}

func (r *fakeRefreshTokenRepo) Create(_ context.Context, token *models.RefreshToken) error {
	r.nextID++
	token.ID = r.nextID
	r.byID[token.ID] = token
	r.byToken[token.Token] = token
	return nil
}

func (r *fakeRefreshTokenRepo) GetByToken(_ context.Context, token string) (*models.RefreshToken, error) {
	record, ok := r.byToken[token]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return record, nil
}

func (r *fakeRefreshTokenRepo) MarkUsed(_ context.Context, id uint) error {
	record, ok := r.byID[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if record.IsUsed || record.IsRevoked {
		return domain.ErrTokenConsumed
	}
	record.IsUsed = true
	return nil
}

func (r *fakeRefreshTokenRepo) DeleteExpiredBefore(_ context.Context, cutoff time.Time) (int64, error) {
	var purged int64
	for id, record := range r.byID {
		if record.ExpiresAt.Before(cutoff) {
			delete(r.byToken, record.Token)
			delete(r.byID, id)
			purged++
		}
	}
	return purged, nil
}

func testConfig() *config.Config {
	return &config.Config{
		JWT: config.JWTConfig{
			Secret:            "test-secret-for-service-tests",
			Issuer:            "salescore-backend",
			Audience:          "salescore-clients",
			AccessTokenHours:  2,
			RefreshTokenHours: 168,
		},
		TokenRetentionDays: 90,
	}
}

func newIdentityService(cfg *config.Config) (*services.IdentityService, *fakeUserRepo, *fakeRefreshTokenRepo) {
	users := newFakeUserRepo()
	tokens := newFakeRefreshTokenRepo()
	tokenService := services.NewTokenService(tokens, cfg)
	svc := services.NewIdentityService(users, &fakeRoleRepo{}, tokens, tokenService)
	return svc, users, tokens
}

func register(t *testing.T, svc *services.IdentityService, username, email string, roleIDs ...uint) *services.AuthResult {
	t.Helper()
	if len(roleIDs) == 0 {
		roleIDs = []uint{models.RoleVendedor}
	}
	result, err := svc.RegisterUser(context.Background(), &services.RegisterInput{
		Username: username,
		Email:    email,
		Password: "Password1!",
		RoleIDs:  roleIDs,
	})
	require.NoError(t, err)
	require.True(t, result.Succeeded)
	require.NotEmpty(t, result.Token)
	require.NotEmpty(t, result.RefreshToken)
	return result
}

func TestRegisterUserIssuesTokenPair(t *testing.T) {
	cfg := testConfig()
	svc, _, _ := newIdentityService(cfg)

	result := register(t, svc, "mario", "mario@salescore.io", models.RoleAdministrador, models.RoleVendedor)

	claims, err := jwt.ValidateAccessToken(result.Token, cfg.JWT.Secret)
	require.NoError(t, err)
	require.Equal(t, "mario", claims.Name)
	require.Equal(t, "mario@salescore.io", claims.Email)
	require.ElementsMatch(t, []string{"1", "2"}, claims.Roles)

	userID, err := claims.UserID()
	require.NoError(t, err)
	require.NotZero(t, userID)
}

func TestRegisterUserReportsBothCollisions(t *testing.T) {
	svc, _, _ := newIdentityService(testConfig())
	register(t, svc, "mario", "mario@salescore.io")

	// Different casing must still collide
	result, err := svc.RegisterUser(context.Background(), &services.RegisterInput{
		Username: "MARIO",
		Email:    "Mario@Salescore.IO",
		Password: "Password1!",
		RoleIDs:  []uint{models.RoleVendedor},
	})
	require.NoError(t, err)
	require.False(t, result.Succeeded)
	require.Equal(t, []string{
		"User with this email already exists",
		"User with this username already exists",
	}, result.Errors)
	require.Empty(t, result.Token)
}

func TestRegisterUserReportsEmailCollisionOnly(t *testing.T) {
	svc, _, _ := newIdentityService(testConfig())
	register(t, svc, "mario", "mario@salescore.io")

	result, err := svc.RegisterUser(context.Background(), &services.RegisterInput{
		Username: "luigi",
		Email:    "mario@salescore.io",
		Password: "Password1!",
		RoleIDs:  []uint{models.RoleVendedor},
	})
	require.NoError(t, err)
	require.False(t, result.Succeeded)
	require.Equal(t, []string{"User with this email already exists"}, result.Errors)
}

func TestRegisterUserReportsUnionOfAvailabilityAndRoleErrors(t *testing.T) {
	svc, _, _ := newIdentityService(testConfig())
	register(t, svc, "mario", "mario@salescore.io")

	result, err := svc.RegisterUser(context.Background(), &services.RegisterInput{
		Username: "luigi",
		Email:    "mario@salescore.io",
		Password: "Password1!",
		RoleIDs:  []uint{models.RoleVendedor, 99},
	})
	require.NoError(t, err)
	require.False(t, result.Succeeded)
	require.Contains(t, result.Errors, "User with this email already exists")
	require.Contains(t, result.Errors, "Role with Id 99 does not exist")
}

func TestLoginUnknownUserIsReportedByName(t *testing.T) {
	svc, _, _ := newIdentityService(testConfig())

	result, err := svc.Login(context.Background(), &services.LoginInput{
		Username: "ghost",
		Password: "Password1!",
	})
	require.NoError(t, err)
	require.False(t, result.Succeeded)
	require.Equal(t, []string{"User ghost does not exist"}, result.Errors)
}

func TestLoginWrongPasswordYieldsBareFailure(t *testing.T) {
	svc, _, _ := newIdentityService(testConfig())
	register(t, svc, "mario", "mario@salescore.io")

	result, err := svc.Login(context.Background(), &services.LoginInput{
		Username: "mario",
		Password: "not-the-password",
	})
	require.NoError(t, err)
	require.False(t, result.Succeeded)
	require.Empty(t, result.Errors)
	require.Empty(t, result.Token)
	require.Empty(t, result.RefreshToken)
}

func TestLoginByEmailIsCaseInsensitive(t *testing.T) {
	svc, _, _ := newIdentityService(testConfig())
	register(t, svc, "mario", "mario@salescore.io")

	result, err := svc.Login(context.Background(), &services.LoginInput{
		Username: "MARIO@SALESCORE.IO",
		Password: "Password1!",
	})
	require.NoError(t, err)
	require.True(t, result.Succeeded)
	require.NotEmpty(t, result.Token)
}

func TestRefreshTokenRotatesExactlyOnce(t *testing.T) {
	svc, _, _ := newIdentityService(testConfig())
	first := register(t, svc, "mario", "mario@salescore.io")

	rotated, err := svc.RefreshToken(context.Background(), first.Token, first.RefreshToken)
	require.NoError(t, err)
	require.True(t, rotated.Succeeded)
	require.NotEqual(t, first.RefreshToken, rotated.RefreshToken)

	// The consumed pair must never be exchangeable again
	replayed, err := svc.RefreshToken(context.Background(), first.Token, first.RefreshToken)
	require.NoError(t, err)
	require.False(t, replayed.Succeeded)
	require.Equal(t, []string{"Token has been used or revoked"}, replayed.Errors)

	// The fresh pair still works
	again, err := svc.RefreshToken(context.Background(), rotated.Token, rotated.RefreshToken)
	require.NoError(t, err)
	require.True(t, again.Succeeded)
}

// racingRefreshTokenRepo models a concurrent refresh of the same token
// committing between this caller's lookup and its conditional mark-used
// update: the record reads as unused, but the update matches no row.
type racingRefreshTokenRepo struct {
	*fakeRefreshTokenRepo
}

func (r *racingRefreshTokenRepo) MarkUsed(_ context.Context, id uint) error {
	record, ok := r.byID[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	record.IsUsed = true
	return domain.ErrTokenConsumed
}

func TestRefreshTokenRaceLoserGetsUsedOrRevoked(t *testing.T) {
	cfg := testConfig()
	users := newFakeUserRepo()
	tokens := newFakeRefreshTokenRepo()
	tokenService := services.NewTokenService(tokens, cfg)
	svc := services.NewIdentityService(users, &fakeRoleRepo{}, &racingRefreshTokenRepo{tokens}, tokenService)

	first := register(t, svc, "mario", "mario@salescore.io")

	// The record still reads as unused at lookup time
	record := tokens.byToken[first.RefreshToken]
	require.NotNil(t, record)
	require.False(t, record.IsUsed)

	result, err := svc.RefreshToken(context.Background(), first.Token, first.RefreshToken)
	require.NoError(t, err)
	require.False(t, result.Succeeded)
	require.Equal(t, []string{"Token has been used or revoked"}, result.Errors)
	require.Empty(t, result.Token)
	require.Empty(t, result.RefreshToken)

	// The loser must not have minted a new ledger record
	require.Len(t, tokens.byID, 1)
}

func TestRefreshTokenAcceptsExpiredAccessToken(t *testing.T) {
	cfg := testConfig()
	cfg.JWT.AccessTokenHours = -1 // issue access tokens that are already expired
	svc, _, _ := newIdentityService(cfg)
	first := register(t, svc, "mario", "mario@salescore.io")

	_, err := jwt.ValidateAccessToken(first.Token, cfg.JWT.Secret)
	require.ErrorIs(t, err, jwt.ErrTokenExpired)

	rotated, err := svc.RefreshToken(context.Background(), first.Token, first.RefreshToken)
	require.NoError(t, err)
	require.True(t, rotated.Succeeded)
}

func TestRefreshTokenRejectsGarbageAccessToken(t *testing.T) {
	svc, _, _ := newIdentityService(testConfig())
	first := register(t, svc, "mario", "mario@salescore.io")

	result, err := svc.RefreshToken(context.Background(), "not-a-jwt", first.RefreshToken)
	require.NoError(t, err)
	require.False(t, result.Succeeded)
	require.Equal(t, []string{"Token is not valid"}, result.Errors)
}

func TestRefreshTokenRejectsUnknownRefreshToken(t *testing.T) {
	svc, _, _ := newIdentityService(testConfig())
	first := register(t, svc, "mario", "mario@salescore.io")

	result, err := svc.RefreshToken(context.Background(), first.Token, "no-such-token")
	require.NoError(t, err)
	require.False(t, result.Succeeded)
	require.Equal(t, []string{"Refresh token does not exist"}, result.Errors)
}

func TestRefreshTokenRejectsExpiredRefreshToken(t *testing.T) {
	svc, _, tokens := newIdentityService(testConfig())
	first := register(t, svc, "mario", "mario@salescore.io")

	record := tokens.byToken[first.RefreshToken]
	require.NotNil(t, record)
	record.ExpiresAt = time.Now().UTC().Add(-time.Hour)

	result, err := svc.RefreshToken(context.Background(), first.Token, first.RefreshToken)
	require.NoError(t, err)
	require.False(t, result.Succeeded)
	require.Equal(t, []string{"Refresh token has expired, user needs to relogin"}, result.Errors)
}

func TestRefreshTokenRejectsMismatchedJwtID(t *testing.T) {
	svc, _, _ := newIdentityService(testConfig())
	first := register(t, svc, "mario", "mario@salescore.io")

	// A later login issues a new access token with a different jti
	second, err := svc.Login(context.Background(), &services.LoginInput{
		Username: "mario",
		Password: "Password1!",
	})
	require.NoError(t, err)
	require.True(t, second.Succeeded)

	result, err := svc.RefreshToken(context.Background(), second.Token, first.RefreshToken)
	require.NoError(t, err)
	require.False(t, result.Succeeded)
	require.Equal(t, []string{"The token does not match the saved token"}, result.Errors)
}

func TestChangePasswordRejectsWrongCurrentPassword(t *testing.T) {
	svc, _, _ := newIdentityService(testConfig())
	register(t, svc, "mario", "mario@salescore.io")
	user, err := svc.GetUserByUsername(context.Background(), "mario")
	require.NoError(t, err)

	result, err := svc.ChangePassword(context.Background(), user.ID, "wrong", "NewPassword1!")
	require.NoError(t, err)
	require.False(t, result.Succeeded)
	require.Equal(t, []string{"Current password is not valid"}, result.Errors)
}

func TestChangePasswordRejectsUnchangedPassword(t *testing.T) {
	svc, _, _ := newIdentityService(testConfig())
	register(t, svc, "mario", "mario@salescore.io")
	user, err := svc.GetUserByUsername(context.Background(), "mario")
	require.NoError(t, err)

	result, err := svc.ChangePassword(context.Background(), user.ID, "Password1!", "Password1!")
	require.NoError(t, err)
	require.False(t, result.Succeeded)
	require.Equal(t, []string{"The new password must be different to current password"}, result.Errors)
}

func TestChangePasswordRejectsShortPassword(t *testing.T) {
	svc, _, _ := newIdentityService(testConfig())
	register(t, svc, "mario", "mario@salescore.io")
	user, err := svc.GetUserByUsername(context.Background(), "mario")
	require.NoError(t, err)

	result, err := svc.ChangePassword(context.Background(), user.ID, "Password1!", "short")
	require.NoError(t, err)
	require.False(t, result.Succeeded)
	require.Equal(t, []string{"Password must be at least 8 characters"}, result.Errors)
}

func TestChangePasswordRotatesCredentials(t *testing.T) {
	svc, _, _ := newIdentityService(testConfig())
	register(t, svc, "mario", "mario@salescore.io")
	user, err := svc.GetUserByUsername(context.Background(), "mario")
	require.NoError(t, err)

	result, err := svc.ChangePassword(context.Background(), user.ID, "Password1!", "NewPassword1!")
	require.NoError(t, err)
	require.True(t, result.Succeeded)
	require.NotEmpty(t, result.Token)

	stale, err := svc.Login(context.Background(), &services.LoginInput{Username: "mario", Password: "Password1!"})
	require.NoError(t, err)
	require.False(t, stale.Succeeded)

	fresh, err := svc.Login(context.Background(), &services.LoginInput{Username: "mario", Password: "NewPassword1!"})
	require.NoError(t, err)
	require.True(t, fresh.Succeeded)
}

func TestChangePasswordUnknownUser(t *testing.T) {
	svc, _, _ := newIdentityService(testConfig())

	_, err := svc.ChangePassword(context.Background(), 42, "Password1!", "NewPassword1!")
	require.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestResetPasswordTokenIsSingleUse(t *testing.T) {
	svc, _, _ := newIdentityService(testConfig())
	register(t, svc, "mario", "mario@salescore.io")
	user, err := svc.GetUserByUsername(context.Background(), "mario")
	require.NoError(t, err)

	token, err := svc.GeneratePasswordResetToken(context.Background(), user.ID)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	wrong, err := svc.ResetPassword(context.Background(), user.ID, "bad-token", "NewPassword1!")
	require.NoError(t, err)
	require.False(t, wrong.Succeeded)
	require.Equal(t, []string{"Invalid or expired reset token"}, wrong.Errors)

	result, err := svc.ResetPassword(context.Background(), user.ID, token, "NewPassword1!")
	require.NoError(t, err)
	require.True(t, result.Succeeded)
	require.NotEmpty(t, result.Token)

	replayed, err := svc.ResetPassword(context.Background(), user.ID, token, "AnotherPassword1!")
	require.NoError(t, err)
	require.False(t, replayed.Succeeded)
	require.Equal(t, []string{"Invalid or expired reset token"}, replayed.Errors)

	fresh, err := svc.Login(context.Background(), &services.LoginInput{Username: "mario", Password: "NewPassword1!"})
	require.NoError(t, err)
	require.True(t, fresh.Succeeded)
}

func TestUpdateAccountInfoExcludesOwnRecordFromAvailability(t *testing.T) {
	svc, _, _ := newIdentityService(testConfig())
	register(t, svc, "mario", "mario@salescore.io")
	user, err := svc.GetUserByUsername(context.Background(), "mario")
	require.NoError(t, err)

	// Keeping the same username/email must not collide with itself
	result, err := svc.UpdateAccountInfo(context.Background(), user.ID, "mario", "mario@salescore.io")
	require.NoError(t, err)
	require.True(t, result.Succeeded)
}

func TestUpdateAccountInfoRejectsCollisionWithOtherAccount(t *testing.T) {
	svc, _, _ := newIdentityService(testConfig())
	register(t, svc, "mario", "mario@salescore.io")
	register(t, svc, "luigi", "luigi@salescore.io")
	user, err := svc.GetUserByUsername(context.Background(), "luigi")
	require.NoError(t, err)

	result, err := svc.UpdateAccountInfo(context.Background(), user.ID, "mario", "luigi@salescore.io")
	require.NoError(t, err)
	require.False(t, result.Succeeded)
	require.Equal(t, []string{"User with this username already exists"}, result.Errors)
}

func TestUpdateUserReportsUnionOfErrors(t *testing.T) {
	svc, _, _ := newIdentityService(testConfig())
	register(t, svc, "mario", "mario@salescore.io")
	register(t, svc, "luigi", "luigi@salescore.io")
	user, err := svc.GetUserByUsername(context.Background(), "luigi")
	require.NoError(t, err)

	result, err := svc.UpdateUser(context.Background(), user.ID, "mario", "luigi@salescore.io", []uint{7})
	require.NoError(t, err)
	require.False(t, result.Succeeded)
	require.Contains(t, result.Errors, "User with this username already exists")
	require.Contains(t, result.Errors, "Role with Id 7 does not exist")
}

func TestUpdateUserReplacesRoleSet(t *testing.T) {
	svc, users, _ := newIdentityService(testConfig())
	register(t, svc, "mario", "mario@salescore.io", models.RoleVendedor)
	user, err := svc.GetUserByUsername(context.Background(), "mario")
	require.NoError(t, err)

	result, err := svc.UpdateUser(context.Background(), user.ID, "mario", "mario@salescore.io",
		[]uint{models.RoleAdministrador, models.RoleCobrador})
	require.NoError(t, err)
	require.True(t, result.Succeeded)
	require.Equal(t, []uint{models.RoleAdministrador, models.RoleCobrador}, users.assignments[user.ID])
}

func TestUpdateUserRolesUnknownUser(t *testing.T) {
	svc, _, _ := newIdentityService(testConfig())

	_, err := svc.UpdateUserRoles(context.Background(), 42, []uint{models.RoleVendedor})
	require.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestUpdateUserRolesNamesMissingRole(t *testing.T) {
	svc, _, _ := newIdentityService(testConfig())
	register(t, svc, "mario", "mario@salescore.io")
	user, err := svc.GetUserByUsername(context.Background(), "mario")
	require.NoError(t, err)

	result, err := svc.UpdateUserRoles(context.Background(), user.ID, []uint{models.RoleVendedor, 44})
	require.NoError(t, err)
	require.False(t, result.Succeeded)
	require.Equal(t, []string{"Role with Id 44 does not exist"}, result.Errors)
}

func TestDeleteUserFreesUsernameForReuse(t *testing.T) {
	svc, _, _ := newIdentityService(testConfig())
	register(t, svc, "mario", "mario@salescore.io")
	user, err := svc.GetUserByUsername(context.Background(), "mario")
	require.NoError(t, err)

	deleted, err := svc.DeleteUser(context.Background(), user.ID)
	require.NoError(t, err)
	require.True(t, deleted)

	_, err = svc.GetUserByID(context.Background(), user.ID, false)
	require.ErrorIs(t, err, domain.ErrUserNotFound)

	exists, err := svc.UserExists(context.Background(), user.ID)
	require.NoError(t, err)
	require.False(t, exists)

	// The soft-deleted account must not block re-registration
	register(t, svc, "mario", "mario@salescore.io")
}

func TestGetUsersClampsPagination(t *testing.T) {
	svc, _, _ := newIdentityService(testConfig())
	register(t, svc, "mario", "mario@salescore.io")
	register(t, svc, "luigi", "luigi@salescore.io")
	register(t, svc, "peach", "peach@salescore.io")

	output, err := svc.GetUsers(context.Background(), &services.ListUsersInput{Page: 0, Limit: 0})
	require.NoError(t, err)
	require.Equal(t, int64(3), output.Total)
	require.Equal(t, 1, output.Page)
	require.Equal(t, 10, output.Limit)
	require.Equal(t, 1, output.TotalPages)
	require.Len(t, output.Users, 3)
}

func TestGetUsersFilters(t *testing.T) {
	svc, _, _ := newIdentityService(testConfig())
	register(t, svc, "mario", "mario@salescore.io")
	register(t, svc, "luigi", "luigi@salescore.io")

	output, err := svc.GetUsers(context.Background(), &services.ListUsersInput{Filter: "luigi"})
	require.NoError(t, err)
	require.Equal(t, int64(1), output.Total)
	require.Len(t, output.Users, 1)
	require.Equal(t, "luigi", output.Users[0].Username)
}

func TestGetRolesReturnsSeededCatalog(t *testing.T) {
	svc, _, _ := newIdentityService(testConfig())

	roles, err := svc.GetRoles(context.Background())
	require.NoError(t, err)
	require.Len(t, roles, 3)
	require.Equal(t, "Administrador", roles[0].Name)
	require.Equal(t, "Vendedor", roles[1].Name)
	require.Equal(t, "Cobrador", roles[2].Name)
}
