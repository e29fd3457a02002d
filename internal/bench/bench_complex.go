package bench

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// benchComplex inserts X users, each with Y articles, and each article with
// Z comments. Then it queries all users, articles and comments with a JOIN
// query.
func (s *suite) benchComplex(ctx context.Context, db *sql.DB) (benchmarkResult, error) {
	w := s.work
	start := time.Now()

	bar := s.newBar(fmt.Sprintf("Inserting %d users", w.complexUsers), w.complexUsers)
	writes, err := parallel(ctx, w.complexUsers, w.goroutines, bar, insertUser(db, userEmail))
	if err != nil {
		return benchmarkResult{}, fmt.Errorf("error inserting users: %w", err)
	}
	bar.Finish()

	totalArticles := w.complexUsers * w.complexArticlesPerUser
	bar = s.newBar(fmt.Sprintf("Inserting %d articles", totalArticles), totalArticles)
	n, err := parallel(ctx, totalArticles, w.goroutines, bar, func(ctx context.Context, i int) (int64, error) {
		userID := (i % w.complexUsers) + 1
		return affected(db.ExecContext(
			ctx,
			"INSERT INTO articles (created, userId, text) VALUES (?, ?, ?)",
			time.Now().Unix(), userID, fmt.Sprintf("article for user %d", userID),
		))
	})
	if err != nil {
		return benchmarkResult{}, fmt.Errorf("error inserting articles: %w", err)
	}
	writes += n
	bar.Finish()

	totalComments := totalArticles * w.complexCommentsPerArticle
	bar = s.newBar(fmt.Sprintf("Inserting %d comments", totalComments), totalComments)
	n, err = parallel(ctx, totalComments, w.goroutines, bar, func(ctx context.Context, i int) (int64, error) {
		articleID := (i % totalArticles) + 1
		return affected(db.ExecContext(
			ctx,
			"INSERT INTO comments (created, articleId, text) VALUES (?, ?, ?)",
			time.Now().Unix(), articleID, "comment",
		))
	})
	if err != nil {
		return benchmarkResult{}, fmt.Errorf("error inserting comments: %w", err)
	}
	writes += n
	bar.Finish()

	bar = s.newBar("Reading users, articles and comments", 1)
	rows, err := db.QueryContext(ctx, `
		SELECT
		users.id, users.created, users.email, users.active,
		articles.id, articles.created, articles.userId, articles.text,
		comments.id, comments.created, comments.articleId, comments.text
		FROM users
		JOIN articles ON articles.userId = users.id
		JOIN comments ON comments.articleId = articles.id
		ORDER BY users.created, articles.created, comments.created
	`)
	if err != nil {
		return benchmarkResult{}, fmt.Errorf("error querying: %w", err)
	}
	defer rows.Close()

	var reads int64
	for rows.Next() {
		var userID, created, active int
		var email string
		var articleID, articleCreated, articleUserID int
		var articleText string
		var commentID, commentCreated, commentArticleID int
		var commentText string

		err = rows.Scan(
			&userID, &created, &email, &active,
			&articleID, &articleCreated, &articleUserID, &articleText,
			&commentID, &commentCreated, &commentArticleID, &commentText,
		)
		if err != nil {
			return benchmarkResult{}, fmt.Errorf("error when scanning: %w", err)
		}
		reads++
	}
	if err := rows.Err(); err != nil {
		return benchmarkResult{}, fmt.Errorf("error when reading rows: %w", err)
	}
	bar.Inc()
	bar.Finish()

	return benchmarkResult{
		Name:     "Complex",
		Duration: time.Since(start),
		Reads:    reads,
		Writes:   writes,
	}, nil
}
