package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/helloimabid/compstudy/pkg/models"
)

// ErrTopicNotFound is returned when a topic id or name does not exist
var ErrTopicNotFound = errors.New("topic not found")

// TopicRepository handles database operations for curriculum topics
type TopicRepository struct{}

// NewTopicRepository creates a new repository instance
func NewTopicRepository() *TopicRepository {
	return &TopicRepository{}
}

// Create inserts a new topic
func (r *TopicRepository) Create(ctx context.Context, topic *models.Topic) error {
	if topic.ID == "" {
		topic.ID = uuid.NewString()
	}
	now := time.Now()
	topic.CreatedAt = now
	topic.UpdatedAt = now

	query := `
		INSERT INTO topics (id, subject_id, subject_name, name, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := DB.ExecContext(ctx, query,
		topic.ID, topic.SubjectID, topic.SubjectName, topic.Name, topic.Description,
		topic.CreatedAt, topic.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create topic: %w", err)
	}
	return nil
}

// GetByID returns a single topic
func (r *TopicRepository) GetByID(ctx context.Context, id string) (*models.Topic, error) {
	var topic models.Topic
	err := DB.GetContext(ctx, &topic, "SELECT * FROM topics WHERE id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTopicNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get topic: %w", err)
	}
	return &topic, nil
}

// GetByName returns a topic by subject and name, used by the importer to
// avoid duplicates
func (r *TopicRepository) GetByName(ctx context.Context, subjectID, name string) (*models.Topic, error) {
	var topic models.Topic
	err := DB.GetContext(ctx, &topic, "SELECT * FROM topics WHERE subject_id = $1 AND name = $2", subjectID, name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTopicNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get topic by name: %w", err)
	}
	return &topic, nil
}

// List returns all topics ordered by subject then name
func (r *TopicRepository) List(ctx context.Context) ([]models.Topic, error) {
	var topics []models.Topic
	err := DB.SelectContext(ctx, &topics, "SELECT * FROM topics ORDER BY subject_name, name")
	if err != nil {
		return nil, fmt.Errorf("failed to list topics: %w", err)
	}
	return topics, nil
}
