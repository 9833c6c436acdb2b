package mysql

// Note: `text` is reserved; the full canonical record lives in `raw`, the
// indexed columns exist for read paths and aggregates.
const insertReviewsPrefix = "INSERT INTO reviews\n" +
	"  (id, site, display_name, country_code, location, rating, language, published_date, raw)\n" +
	"VALUES "

// COALESCE keeps the old value when a re-harvest carries NULL for a column.
const insertReviewsOnDup = " ON DUPLICATE KEY UPDATE\n" +
	"  display_name   = COALESCE(VALUES(display_name), reviews.display_name),\n" +
	"  country_code   = COALESCE(VALUES(country_code), reviews.country_code),\n" +
	"  location       = COALESCE(VALUES(location), reviews.location),\n" +
	"  rating         = COALESCE(VALUES(rating), reviews.rating),\n" +
	"  language       = COALESCE(VALUES(language), reviews.language),\n" +
	"  published_date = COALESCE(VALUES(published_date), reviews.published_date),\n" +
	"  raw            = VALUES(raw),\n" +
	"  updated_at     = CURRENT_TIMESTAMP\n"

const insertRunSQL = `
INSERT INTO harvest_runs (site, pages, reviews, terminated, started_at, finished_at)
VALUES (?, ?, ?, ?, ?, ?)
`

const listReviewsSQL = `
SELECT raw
FROM reviews
WHERE site = ?
ORDER BY published_date DESC, id DESC
LIMIT ?
`

const locationSummarySQL = `
SELECT
  COALESCE(location, country_code, 'Unknown') AS loc,
  COUNT(*)    AS cnt,
  AVG(rating) AS mean_rating
FROM reviews
WHERE site = ?
GROUP BY loc
ORDER BY cnt DESC, MIN(created_at) ASC
`
