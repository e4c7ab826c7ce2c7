package service

import (
	"context"
	"time"

	"github.com/kamruz-zzaman/portfolio-v2/internal/model"
	"github.com/kamruz-zzaman/portfolio-v2/internal/repository"
)

const recentActivityLimit = 10

var monthNames = [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// DashboardStats holds totals and how many of each were created since the
// start of last month.
type DashboardStats struct {
	Projects       int64 `json:"projects"`
	Posts          int64 `json:"posts"`
	Comments       int64 `json:"comments"`
	Users          int64 `json:"users"`
	ProjectsChange int64 `json:"projectsChange"`
	PostsChange    int64 `json:"postsChange"`
	CommentsChange int64 `json:"commentsChange"`
	UsersChange    int64 `json:"usersChange"`
}

type MonthlyTotal struct {
	Name  string `json:"name"`
	Total int64  `json:"total"`
}

type DashboardService interface {
	Stats(ctx context.Context, actor Actor) (*DashboardStats, error)
	RecentActivities(ctx context.Context, actor Actor) ([]model.Activity, error)
	MonthlyViews(ctx context.Context, actor Actor) ([]MonthlyTotal, error)
}

type dashboardService struct {
	postRepo        repository.PostRepository
	projectRepo     repository.ProjectRepository
	commentRepo     repository.CommentRepository
	userRepo        repository.UserRepository
	interactionRepo repository.InteractionRepository
	now             func() time.Time
}

func NewDashboardService(
	postRepo repository.PostRepository,
	projectRepo repository.ProjectRepository,
	commentRepo repository.CommentRepository,
	userRepo repository.UserRepository,
	interactionRepo repository.InteractionRepository,
) DashboardService {
	return &dashboardService{
		postRepo:        postRepo,
		projectRepo:     projectRepo,
		commentRepo:     commentRepo,
		userRepo:        userRepo,
		interactionRepo: interactionRepo,
		now:             func() time.Time { return time.Now().UTC() },
	}
}

func (s *dashboardService) Stats(ctx context.Context, actor Actor) (*DashboardStats, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	now := s.now()
	since := time.Date(now.Year(), now.Month()-1, 1, 0, 0, 0, 0, time.UTC)
	until := now.Add(time.Second)

	type counter struct {
		total  func(context.Context) (int64, error)
		recent func(context.Context, time.Time, time.Time) (int64, error)
		dst    *int64
		change *int64
	}

	stats := &DashboardStats{}
	counters := []counter{
		{s.projectRepo.Count, s.projectRepo.CountCreatedBetween, &stats.Projects, &stats.ProjectsChange},
		{s.postRepo.Count, s.postRepo.CountCreatedBetween, &stats.Posts, &stats.PostsChange},
		{s.commentRepo.Count, s.commentRepo.CountCreatedBetween, &stats.Comments, &stats.CommentsChange},
		{s.userRepo.Count, s.userRepo.CountCreatedBetween, &stats.Users, &stats.UsersChange},
	}
	for _, c := range counters {
		total, err := c.total(ctx)
		if err != nil {
			return nil, Internal("failed to count", err)
		}
		recent, err := c.recent(ctx, since, until)
		if err != nil {
			return nil, Internal("failed to count", err)
		}
		*c.dst = total
		*c.change = recent
	}
	return stats, nil
}

// RecentActivities renders the latest ledger rows as feed entries.
func (s *dashboardService) RecentActivities(ctx context.Context, actor Actor) ([]model.Activity, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	rows, err := s.interactionRepo.FindRecent(ctx, recentActivityLimit)
	if err != nil {
		return nil, Internal("failed to load activities", err)
	}

	activities := make([]model.Activity, 0, len(rows))
	for _, row := range rows {
		if a, ok := renderActivity(row); ok {
			activities = append(activities, a)
		}
	}
	return activities, nil
}

// MonthlyViews returns view counts per calendar month of the current year.
func (s *dashboardService) MonthlyViews(ctx context.Context, actor Actor) ([]MonthlyTotal, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	now := s.now()
	from := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(1, 0, 0)

	times, err := s.interactionRepo.FindKindTimes(ctx, model.KindView, from, to)
	if err != nil {
		return nil, Internal("failed to load analytics", err)
	}

	data := make([]MonthlyTotal, 12)
	for i, name := range monthNames {
		data[i].Name = name
	}
	for _, t := range times {
		data[t.UTC().Month()-1].Total++
	}
	return data, nil
}

func renderActivity(row model.Interaction) (model.Activity, bool) {
	a := model.Activity{
		ID:        row.ID,
		Type:      model.ActivityInteraction,
		UserID:    row.UserID,
		CreatedAt: row.CreatedAt,
	}
	if row.User != nil {
		a.User = row.User.Name
	}

	switch {
	case row.Post != nil:
		a.Action = row.Kind.Verb()
		a.Target = row.Post.Title
		a.PostID = row.Post.ID
	case row.Comment != nil && row.Kind == model.KindLike:
		a.Action = "liked a comment on"
		a.CommentID = row.Comment.ID
		a.PostID = row.Comment.PostID
		if row.Comment.Post != nil {
			a.Target = row.Comment.Post.Title
		}
	default:
		return model.Activity{}, false
	}
	return a, true
}
