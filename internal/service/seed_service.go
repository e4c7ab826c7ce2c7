package service

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/kamruz-zzaman/portfolio-v2/internal/model"
	"github.com/kamruz-zzaman/portfolio-v2/internal/repository"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

//go:embed seeddata/default.yaml
var defaultSeed []byte

// SeedData is the YAML document loaded by `portfolioctl seed`.
type SeedData struct {
	Users    []SeedUser       `yaml:"users"`
	Projects []ProjectRequest `yaml:"projects"`
	Posts    []SeedPost       `yaml:"posts"`
	Comments []SeedComment    `yaml:"comments"`
}

type SeedUser struct {
	Name     string `yaml:"name"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
	Role     string `yaml:"role"`
}

// SeedPost references its author by email.
type SeedPost struct {
	PostRequest `yaml:",inline"`
	Author      string `yaml:"author"`
}

// SeedComment references its post by slug and its author by email. ReplyTo
// is the index of an earlier comment in the same file.
type SeedComment struct {
	Post    string `yaml:"post"`
	Author  string `yaml:"author"`
	Content string `yaml:"content"`
	ReplyTo *int   `yaml:"replyTo"`
}

// SeedResult counts what Seed inserted.
type SeedResult struct {
	Skipped  bool `json:"skipped"`
	Users    int  `json:"users"`
	Projects int  `json:"projects"`
	Posts    int  `json:"posts"`
	Comments int  `json:"comments"`
}

// DefaultSeedData returns the built-in demo content.
func DefaultSeedData() (*SeedData, error) {
	return ParseSeedData(defaultSeed)
}

// LoadSeedFile reads a seed document from disk.
func LoadSeedFile(path string) (*SeedData, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return ParseSeedData(raw)
}

func ParseSeedData(raw []byte) (*SeedData, error) {
	var data SeedData
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("parse seed data: %w", err)
	}
	return &data, nil
}

type SeedService struct {
	db *gorm.DB
}

func NewSeedService(db *gorm.DB) *SeedService {
	return &SeedService{db: db}
}

// Seed inserts data in one transaction. It does nothing when an admin
// already exists.
func (s *SeedService) Seed(ctx context.Context, data *SeedData) (SeedResult, error) {
	var result SeedResult

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		userRepo := repository.NewUserRepository(tx, nil)
		postRepo := repository.NewPostRepository(tx, nil)
		projectRepo := repository.NewProjectRepository(tx, nil)
		commentRepo := repository.NewCommentRepository(tx, nil)

		admins, err := userRepo.CountAdmins(ctx)
		if err != nil {
			return err
		}
		if admins > 0 {
			result.Skipped = true
			return nil
		}

		usersByEmail := make(map[string]*model.User, len(data.Users))
		for _, su := range data.Users {
			role := su.Role
			if role == "" {
				role = model.RoleUser
			}
			if !model.ValidRole(role) {
				return fmt.Errorf("user %s: invalid role %q", su.Email, role)
			}
			hash, err := HashPassword(su.Password)
			if err != nil {
				return err
			}
			user := &model.User{
				Name:         su.Name,
				Email:        strings.ToLower(strings.TrimSpace(su.Email)),
				PasswordHash: hash,
				Role:         role,
			}
			if err := userRepo.Create(ctx, user); err != nil {
				return fmt.Errorf("user %s: %w", su.Email, err)
			}
			usersByEmail[user.Email] = user
			result.Users++
		}

		lookupUser := func(email string) (*model.User, error) {
			if u, ok := usersByEmail[strings.ToLower(email)]; ok {
				return u, nil
			}
			return userRepo.FindByEmail(ctx, strings.ToLower(email))
		}

		for _, sp := range data.Projects {
			project := &model.Project{}
			if err := applyProjectRequest(project, sp); err != nil {
				return fmt.Errorf("project %q: %w", sp.Title, err)
			}
			if err := projectRepo.Create(ctx, project); err != nil {
				return fmt.Errorf("project %q: %w", sp.Title, err)
			}
			result.Projects++
		}

		postsBySlug := make(map[string]*model.Post, len(data.Posts))
		for _, sp := range data.Posts {
			author, err := lookupUser(sp.Author)
			if err != nil {
				return fmt.Errorf("post %q author %s: %w", sp.Title, sp.Author, err)
			}
			post := &model.Post{AuthorID: author.ID}
			if err := applyPostRequest(post, sp.PostRequest); err != nil {
				return fmt.Errorf("post %q: %w", sp.Title, err)
			}
			if err := postRepo.Create(ctx, post); err != nil {
				return fmt.Errorf("post %q: %w", sp.Title, err)
			}
			postsBySlug[post.Slug] = post
			result.Posts++
		}

		created := make([]*model.Comment, 0, len(data.Comments))
		for i, sc := range data.Comments {
			post, ok := postsBySlug[sc.Post]
			if !ok {
				return fmt.Errorf("comment %d: unknown post %q", i, sc.Post)
			}
			author, err := lookupUser(sc.Author)
			if err != nil {
				return fmt.Errorf("comment %d author %s: %w", i, sc.Author, err)
			}
			comment := &model.Comment{PostID: post.ID, AuthorID: author.ID, Content: sc.Content}
			if sc.ReplyTo != nil {
				if *sc.ReplyTo < 0 || *sc.ReplyTo >= len(created) {
					return fmt.Errorf("comment %d: replyTo %d out of range", i, *sc.ReplyTo)
				}
				parent := created[*sc.ReplyTo]
				if parent.PostID != post.ID {
					return fmt.Errorf("comment %d: parent is on another post", i)
				}
				rootID := parent.ID
				if parent.IsReply() {
					rootID = *parent.ParentID
				}
				comment.ParentID = &rootID
			}
			if err := commentRepo.Create(ctx, comment); err != nil {
				return fmt.Errorf("comment %d: %w", i, err)
			}
			created = append(created, comment)
			result.Comments++
		}
		return nil
	})
	if err != nil {
		var appErr *AppError
		if errors.As(err, &appErr) {
			return SeedResult{}, fmt.Errorf("seed: %s", appErr.Message)
		}
		return SeedResult{}, fmt.Errorf("seed: %w", err)
	}
	return result, nil
}
