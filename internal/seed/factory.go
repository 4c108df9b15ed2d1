// Package seed provides helpers to create demo data for the Warbler
// database. These helpers are intended for development and testing only.
package seed

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"warbler/internal/models"
	"warbler/internal/validation"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DefaultPassword is the password every seeded user signs in with.
const DefaultPassword = "password123"

// Factory builds domain entities and persists them to the database.
type Factory struct {
	db    *gorm.DB
	faker *gofakeit.Faker
	hash  string
	seq   int
}

// NewFactory creates a Factory bound to db. A zero seed picks a random one.
// The default password is hashed once with bcryptCost and shared by all users.
func NewFactory(db *gorm.DB, seed int64, bcryptCost int) (*Factory, error) {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash seed password: %w", err)
	}
	return &Factory{db: db, faker: gofakeit.New(seed), hash: string(hash)}, nil
}

// CreateUser constructs and persists a sample user.
// Optional override functions may modify the generated user before saving.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	f.seq++
	username := fmt.Sprintf("%s%d", f.faker.Username(), f.seq)
	if utf8.RuneCountInString(username) > validation.MaxUsernameLength {
		username = fmt.Sprintf("user%d", f.seq)
	}

	user := &models.User{
		Username:       username,
		Email:          strings.ToLower(username) + "@" + f.faker.DomainName(),
		PasswordHash:   f.hash,
		ImageURL:       fmt.Sprintf("https://i.pravatar.cc/150?u=%s", f.faker.UUID()),
		HeaderImageURL: models.DefaultHeaderImageURL,
		Bio:            f.faker.Sentence(10),
		Location:       f.faker.City(),
	}
	for _, override := range overrides {
		override(user)
	}

	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// MessageText returns a random message body that fits the length limit.
func (f *Factory) MessageText() string {
	text := f.faker.Sentence(f.faker.Number(3, 20))
	if utf8.RuneCountInString(text) > models.MaxMessageLength {
		text = string([]rune(text)[:models.MaxMessageLength])
	}
	return text
}

// CreateMessage constructs and persists a message authored by user,
// backdated up to maxAge.
func (f *Factory) CreateMessage(user *models.User, maxAge time.Duration, overrides ...func(*models.Message)) (*models.Message, error) {
	msg := &models.Message{
		Text:      f.MessageText(),
		UserID:    user.ID,
		Timestamp: time.Now().UTC(),
	}
	if maxAge > 0 {
		back := time.Duration(f.faker.Number(0, int(maxAge/time.Minute))) * time.Minute
		msg.Timestamp = msg.Timestamp.Add(-back)
	}
	for _, override := range overrides {
		override(msg)
	}

	if err := f.db.Omit("User").Create(msg).Error; err != nil {
		return nil, err
	}
	return msg, nil
}

// Follow persists a follow edge from follower to followed.
func (f *Factory) Follow(follower, followed *models.User) error {
	return f.db.Omit("Follower", "Followed").Create(&models.Follow{
		FollowerID: follower.ID,
		FollowedID: followed.ID,
	}).Error
}

// Like persists a like of msg by user.
func (f *Factory) Like(user *models.User, msg *models.Message) error {
	return f.db.Omit("User", "Message").Create(&models.LikedMessage{
		UserID:    user.ID,
		MessageID: msg.ID,
	}).Error
}
