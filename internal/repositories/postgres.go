package repositories

import (
	"github.com/jackc/pgx/v5"

	"github.com/vidtube/backend/internal/models"
)

const videoColumns = `
    v.id, v.title, v.description, v.video_url, v.video_key, v.thumbnail_url, v.thumbnail_key,
    v.duration, v.views, v.is_published, v.owner_id, v.created_at, v.updated_at,
    u.username, u.full_name, u.avatar_url`

const videoFrom = `
    FROM videos v
    JOIN users u ON u.id = v.owner_id`

func scanVideo(row pgx.Row) (models.Video, error) {
	var (
		video models.Video
		owner models.UserSummary
	)
	err := row.Scan(
		&video.ID, &video.Title, &video.Description,
		&video.VideoFile.URL, &video.VideoFile.PublicID,
		&video.Thumbnail.URL, &video.Thumbnail.PublicID,
		&video.Duration, &video.Views, &video.IsPublished, &video.OwnerID,
		&video.CreatedAt, &video.UpdatedAt,
		&owner.Username, &owner.FullName, &owner.Avatar,
	)
	if err != nil {
		return models.Video{}, err
	}
	owner.ID = video.OwnerID
	video.Owner = &owner
	return video, nil
}

func collectVideos(rows pgx.Rows) ([]models.Video, error) {
	defer rows.Close()

	videos := []models.Video{}
	for rows.Next() {
		video, err := scanVideo(rows)
		if err != nil {
			return nil, err
		}
		videos = append(videos, video)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return videos, nil
}

func scanSummary(row pgx.Row) (models.UserSummary, error) {
	var summary models.UserSummary
	err := row.Scan(&summary.ID, &summary.Username, &summary.FullName, &summary.Avatar)
	return summary, err
}
