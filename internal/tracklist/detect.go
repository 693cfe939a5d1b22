package tracklist

import (
	"regexp"
	"strings"

	"github.com/ytget/musicdl/internal/platform"
)

// Synonym sets used to score column headers
var (
	ArtistSynonyms = []string{
		"artist", "artists", "primary artist", "main artist", "lead artist",
		"performer", "band", "singer", "vocalist", "composer", "author",
		"musician", "artist name", "album artist", "primary", "group",
	}
	TrackSynonyms = []string{
		"track", "track name", "song", "song name", "title", "recording",
		"work", "composition", "piece", "single", "name",
	}
	AlbumSynonyms = []string{"album", "album name", "record", "release", "lp"}
)

// Scoring constants
const (
	exactMatchScore   = 10
	wordBonusScore    = 3
	lowScoreThreshold = 2

	// share of rows that must hold a separator for single-column mode
	singleColumnRatio = 0.3
	// share of non-empty values that must be YouTube URLs for the URL column
	urlColumnRatio = 0.5
)

var (
	artistWord = regexp.MustCompile(`\bartist\b`)
	titleWord  = regexp.MustCompile(`\btitle\b|\btrack\b|\bsong\b`)
	albumWord  = regexp.MustCompile(`\balbum\b`)
)

// ScoreHeader rates how well a header name matches a synonym set
func ScoreHeader(name string, synonyms []string) int {
	lower := strings.ToLower(strings.TrimSpace(name))
	score := 0

	for _, s := range synonyms {
		if lower == s {
			score += exactMatchScore
			break
		}
	}
	for _, s := range synonyms {
		if strings.Contains(lower, s) {
			score += max(1, len(s)/3)
		}
	}
	if artistWord.MatchString(lower) {
		score += wordBonusScore
	}
	if titleWord.MatchString(lower) {
		score += wordBonusScore
	}
	return score
}

type columns struct {
	artist, track, album, single, url string
}

func detectColumns(headers []string, rows []Row) columns {
	var c columns
	c.url = detectURLColumn(headers, rows)

	candidates := make([]string, 0, len(headers))
	for _, h := range headers {
		if h != c.url {
			candidates = append(candidates, h)
		}
	}

	artistScores := make(map[string]int, len(candidates))
	trackScores := make(map[string]int, len(candidates))
	bestArtist, bestTrack := -1, -1
	for _, h := range candidates {
		artistScores[h] = ScoreHeader(h, ArtistSynonyms)
		trackScores[h] = ScoreHeader(h, TrackSynonyms)
		if artistScores[h] > bestArtist {
			c.artist, bestArtist = h, artistScores[h]
		}
		if trackScores[h] > bestTrack {
			c.track, bestTrack = h, trackScores[h]
		}
	}

	if bestArtist <= lowScoreThreshold || bestTrack <= lowScoreThreshold {
		if single := detectSingleColumn(candidates, rows); single != "" {
			c.artist, c.track, c.single = "", "", single
			return c
		}
	}

	if c.artist != "" && c.artist == c.track {
		second, secondScore := "", -1
		for _, h := range candidates {
			if h == c.artist {
				continue
			}
			if trackScores[h] > secondScore {
				second, secondScore = h, trackScores[h]
			}
		}
		if second != "" && secondScore > 0 {
			c.track = second
		} else {
			c.artist = ""
		}
	}

	c.album = detectAlbumColumn(candidates, c.artist, c.track)
	return c
}

// detectSingleColumn finds the column that most often holds "Artist - Title"
func detectSingleColumn(headers []string, rows []Row) string {
	best, bestCount := "", 0
	for _, h := range headers {
		count := 0
		for _, r := range rows {
			if hasSeparator(r.Get(h)) {
				count++
			}
		}
		if count > bestCount && float64(count) >= float64(len(rows))*singleColumnRatio {
			best, bestCount = h, count
		}
	}
	return best
}

func detectAlbumColumn(headers []string, artistCol, trackCol string) string {
	best, bestScore := "", 0
	for _, h := range headers {
		if h == artistCol || h == trackCol {
			continue
		}
		score := ScoreHeader(h, AlbumSynonyms)
		if albumWord.MatchString(strings.ToLower(h)) {
			score += wordBonusScore
		}
		if score > bestScore {
			best, bestScore = h, score
		}
	}
	if bestScore >= exactMatchScore || albumWord.MatchString(strings.ToLower(best)) {
		return best
	}
	return ""
}

func detectURLColumn(headers []string, rows []Row) string {
	best, bestCount := "", 0
	for _, h := range headers {
		nonEmpty, urls := 0, 0
		for _, r := range rows {
			v := r.Get(h)
			if v == "" {
				continue
			}
			nonEmpty++
			if platform.IsYouTubeURL(v) && strings.Contains(v, "/") {
				urls++
			}
		}
		if urls > bestCount && float64(urls) >= float64(nonEmpty)*urlColumnRatio {
			best, bestCount = h, urls
		}
	}
	return best
}
