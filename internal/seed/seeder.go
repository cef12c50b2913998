package seed

import (
	"fmt"
	"log"

	"inkwell/internal/models"

	"gorm.io/gorm"
)

// Seeder orchestrates demo data creation.
type Seeder struct {
	db      *gorm.DB
	factory *Factory
}

// NewSeeder creates a Seeder bound to the given DB.
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db, factory: NewFactory(db)}
}

// ClearAll removes all seeded data. Order matters: children before parents.
func (s *Seeder) ClearAll() error {
	for _, table := range []string{"likes", "comments", "posts", "users"} {
		if err := s.db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}
	log.Println("Database cleared")
	return nil
}

// SeedUsers creates n users plus one known admin account
// (admin@inkwell.dev / password123).
func (s *Seeder) SeedUsers(n int) ([]*models.User, error) {
	users := make([]*models.User, 0, n+1)

	admin, err := s.factory.CreateUser(func(u *models.User) {
		u.Username = "admin"
		u.Email = "admin@inkwell.dev"
		u.Role = models.RoleAdmin
	})
	if err != nil {
		return nil, fmt.Errorf("seeding admin: %w", err)
	}
	users = append(users, admin)

	for i := 0; i < n; i++ {
		user, err := s.factory.CreateUser()
		if err != nil {
			return nil, fmt.Errorf("seeding user %d: %w", i, err)
		}
		users = append(users, user)
	}

	log.Printf("Seeded %d users", len(users))
	return users, nil
}

// SeedPosts creates n posts spread across the given authors.
func (s *Seeder) SeedPosts(users []*models.User, n int) ([]*models.Post, error) {
	posts := make([]*models.Post, 0, n)
	for i := 0; i < n; i++ {
		author := users[s.factory.rand.Intn(len(users))]
		posts = append(posts, s.factory.BuildPost(author))
	}
	if err := s.factory.CreatePostsBatch(posts); err != nil {
		return nil, fmt.Errorf("seeding posts: %w", err)
	}

	log.Printf("Seeded %d posts", len(posts))
	return posts, nil
}

// SeedEngagement adds comments (with occasional replies) and likes to
// published posts.
func (s *Seeder) SeedEngagement(users []*models.User, posts []*models.Post) error {
	r := s.factory.rand

	var comments, likes int
	for _, post := range posts {
		if !post.IsPublished {
			continue
		}

		for i := 0; i < r.Intn(6); i++ {
			commenter := users[r.Intn(len(users))]
			comment, err := s.factory.CreateComment(commenter, post, nil)
			if err != nil {
				return fmt.Errorf("seeding comment: %w", err)
			}
			comments++

			// roughly a third of comments get one reply
			if r.Intn(3) == 0 {
				replier := users[r.Intn(len(users))]
				if _, err := s.factory.CreateComment(replier, post, comment); err != nil {
					return fmt.Errorf("seeding reply: %w", err)
				}
				comments++
			}
		}

		for i := 0; i < r.Intn(8); i++ {
			liker := users[r.Intn(len(users))]
			if err := s.factory.CreateLike(liker, post); err != nil {
				return fmt.Errorf("seeding like: %w", err)
			}
			likes++
		}
	}

	log.Printf("Seeded %d comments and up to %d likes", comments, likes)
	return nil
}
