// Package genre buckets tracks into coarse genre categories. The source
// rarely supplies per-track genres, so this is a best-effort heuristic over
// artist tags and name keywords, not an authoritative taxonomy.
package genre

import "strings"

// Bucket names returned by the default classifier.
const (
	BucketBollywood  = "Bollywood"
	BucketPop        = "Pop"
	BucketHipHop     = "Hip-Hop"
	BucketRock       = "Rock"
	BucketElectronic = "Electronic"
	BucketClassical  = "Classical"
	BucketFolk       = "Folk"
	BucketOther      = "Other"
)

// Signal is the per-track evidence available to a classifier.
type Signal struct {
	TrackName    string
	AlbumName    string
	ArtistNames  []string
	ArtistGenres []string
}

// Classifier maps one track's signal to a bucket name. Swappable so a real
// genre source can replace the heuristic without touching the counting logic.
type Classifier func(Signal) string

// tagBuckets maps source genre tags (matched as substrings, lowercased) to
// buckets. Checked before any keyword guessing; first match wins, so more
// specific tags come before generic ones ("indie pop" must hit Pop via "pop"
// only after Bollywood/Hip-Hop tags had their chance).
var tagBuckets = []struct {
	bucket string
	tags   []string
}{
	{BucketBollywood, []string{"bollywood", "filmi", "desi", "punjabi pop"}},
	{BucketHipHop, []string{"hip hop", "hip-hop", "rap", "trap", "drill"}},
	{BucketRock, []string{"rock", "metal", "punk", "grunge"}},
	{BucketElectronic, []string{"edm", "house", "techno", "trance", "dubstep", "electronic"}},
	{BucketClassical, []string{"classical", "carnatic", "hindustani"}},
	{BucketFolk, []string{"folk", "sufi", "ghazal"}},
	{BucketPop, []string{"pop", "r&b", "soul"}},
}

// keywordBuckets is the fallback vocabulary matched against the combined
// track/album/artist text. First match wins.
var keywordBuckets = []struct {
	bucket   string
	keywords []string
}{
	{BucketBollywood, []string{"bollywood", "hindi", "punjabi", "telugu", "tamil"}},
	{BucketHipHop, []string{"hip hop", "hip-hop", "rap"}},
	{BucketRock, []string{"rock", "metal", "alt "}},
	{BucketElectronic, []string{"electro", "edm", "dance", "house"}},
	{BucketClassical, []string{"classical", "raag", "raga", "symphony"}},
	{BucketFolk, []string{"folk", "sufi", "ghazal"}},
	{BucketPop, []string{"pop"}},
}

// Classify is the default heuristic: artist genre tags first, then name
// keywords, else Other.
func Classify(sig Signal) string {
	for _, tb := range tagBuckets {
		for _, key := range tb.tags {
			for _, tag := range sig.ArtistGenres {
				if strings.Contains(strings.ToLower(tag), key) {
					return tb.bucket
				}
			}
		}
	}

	text := strings.ToLower(sig.TrackName + " " + sig.AlbumName + " " + strings.Join(sig.ArtistNames, " "))
	for _, kb := range keywordBuckets {
		for _, keyword := range kb.keywords {
			if strings.Contains(text, keyword) {
				return kb.bucket
			}
		}
	}

	return BucketOther
}
