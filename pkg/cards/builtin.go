package cards

import (
	"github.com/matzehuels/bentogrid/pkg/grid"
)

// Default is the registry of built-in card types.
var Default = NewRegistry(builtins()...)

// size sets both geometries' sizes.
func size(it *grid.Item, w, h, mobileW, mobileH int) {
	it.W, it.H = w, h
	it.MobileW, it.MobileH = mobileW, mobileH
}

func builtins() []*Definition {
	return []*Definition{
		// Core
		{
			Type:         "text",
			Name:         "Text",
			Groups:       []string{"Core"},
			CanHaveLabel: true,
			CreateNew: func(it *grid.Item) {
				it.CardData = map[string]any{"text": "hello world"}
			},
		},
		{
			Type:         "section",
			Name:         "Section Headline",
			DefaultColor: "transparent",
			Groups:       []string{"Core"},
			Limits:       Limits{MaxH: 1},
			CreateNew: func(it *grid.Item) {
				it.CardData = map[string]any{"text": "hello world"}
				size(it, grid.Columns(), 1, grid.Columns(), 2)
			},
		},
		{
			Type:         "image",
			Name:         "Image",
			Groups:       []string{"Core"},
			CanHaveLabel: true,
			CreateNew: func(it *grid.Item) {
				it.CardData = map[string]any{"image": "", "alt": "", "href": ""}
			},
		},
		{
			Type:     "link",
			Name:     "Link",
			Groups:   []string{"Core"},
			Keywords: []string{"url", "website", "href", "webpage"},
			CreateNew: func(it *grid.Item) {
				it.CardData["hasFetched"] = false
			},
		},

		// Utilities
		{
			Type:          "button",
			Name:          "Button",
			DefaultColor:  "transparent",
			AllowSetColor: true,
			Groups:        []string{"Utilities"},
			Keywords:      []string{"cta", "action", "click", "link"},
			Limits:        Limits{MinW: 2, MinH: 1, MaxW: 8, MaxH: 4},
			CreateNew: func(it *grid.Item) {
				it.CardData = map[string]any{"text": "Click me"}
				size(it, 2, 1, 4, 2)
			},
		},
		{
			Type:          "fluid-text",
			Name:          "Fluid Text",
			DefaultColor:  "transparent",
			AllowSetColor: true,
			Groups:        []string{"Utilities"},
			Limits:        Limits{MinW: 2, MinH: 2},
			CreateNew: func(it *grid.Item) {
				it.CardData = map[string]any{"text": "hello"}
			},
		},
		{
			Type:          "timer",
			Name:          "Timer Card",
			AllowSetColor: true,
			CanHaveLabel:  true,
			Groups:        []string{"Utilities"},
			Limits:        Limits{MinW: 4},
			CreateNew: func(it *grid.Item) {
				it.CardData = map[string]any{"mode": "clock"}
				size(it, 4, 2, 8, 3)
			},
		},
		{
			Type:         "mapLocation",
			Name:         "Map",
			CanHaveLabel: true,
			Groups:       []string{"Utilities"},
			Keywords:     []string{"location", "place", "address"},
			CreateNew: func(it *grid.Item) {
				size(it, 4, 4, 8, 8)
			},
		},
		{
			Type:         "draw",
			Name:         "Drawing",
			DefaultColor: "base",
			Groups:       []string{"Utilities"},
			Limits:       Limits{MinW: 2, MinH: 2},
			CreateNew: func(it *grid.Item) {
				it.CardData = map[string]any{"strokes": []any{}}
				size(it, 4, 4, 4, 4)
			},
		},

		// Media
		{
			Type:     "embed",
			Name:     "Embed",
			Groups:   []string{"Media"},
			Keywords: []string{"iframe", "widget", "html", "website"},
			CreateNew: func(it *grid.Item) {
				size(it, 4, 4, 8, 8)
			},
		},
		{
			Type:         "gif",
			Name:         "GIF",
			DefaultColor: "transparent",
			CanHaveLabel: true,
			Groups:       []string{"Media"},
			Keywords:     []string{"animation", "giphy", "meme", "tenor"},
			Limits:       Limits{MinW: 1, MinH: 1},
			CreateNew: func(it *grid.Item) {
				it.CardData = map[string]any{"url": "", "alt": ""}
				size(it, 2, 2, 4, 4)
			},
		},
		{
			Type:     "photoGallery",
			Name:     "Photo Gallery",
			Groups:   []string{"Media"},
			Keywords: []string{"album", "photos", "slideshow", "images", "carousel"},
			Limits:   Limits{MinW: 4},
			CreateNew: func(it *grid.Item) {
				size(it, 4, 3, 8, 6)
			},
		},
		{
			Type:   "youtubeVideo",
			Name:   "Youtube Video",
			Groups: []string{"Media"},
			CreateNew: func(it *grid.Item) {
				it.CardData = map[string]any{}
				size(it, 4, 3, 8, 5)
			},
		},
		{
			Type:   "spotify",
			Name:   "Spotify Embed",
			Groups: []string{"Media"},
			Limits: Limits{MinW: 4, MinH: 5},
			CreateNew: func(it *grid.Item) {
				it.CardData = map[string]any{}
				size(it, 4, 5, 8, 10)
			},
		},
		{
			Type:   "plyrfm",
			Name:   "Plyr.fm Song",
			Groups: []string{"Media"},
			Limits: Limits{MinW: 2, MinH: 2},
			CreateNew: func(it *grid.Item) {
				it.CardData = map[string]any{}
				size(it, 4, 2, 8, 4)
			},
		},
		{
			Type:   "lastfmProfile",
			Name:   "Last.fm Profile",
			Groups: []string{"Media"},
			Limits: Limits{MinW: 2, MinH: 2},
		},
		{
			Type:         "lastfmTopAlbums",
			Name:         "Last.fm Top Albums",
			DefaultColor: "base",
			Groups:       []string{"Media"},
			Limits:       Limits{MinW: 2, MinH: 2},
			CreateNew: func(it *grid.Item) {
				it.CardData["period"] = "7day"
			},
		},
		{
			Type:   "lastfmTopTracks",
			Name:   "Last.fm Top Tracks",
			Groups: []string{"Media"},
			Limits: Limits{MinW: 3, MinH: 2},
			CreateNew: func(it *grid.Item) {
				it.CardData["period"] = "7day"
			},
		},
		{
			Type:   "lastfmRecentTracks",
			Name:   "Last.fm Recent Tracks",
			Groups: []string{"Media"},
			Limits: Limits{MinW: 3, MinH: 2},
			CreateNew: func(it *grid.Item) {
				size(it, 4, 3, 8, 6)
			},
		},
		{
			Type:   "recentTealFMPlays",
			Name:   "Teal.fm Plays",
			Groups: []string{"Media"},
			Limits: Limits{MinW: 4},
			CreateNew: func(it *grid.Item) {
				size(it, 4, 4, 8, 8)
			},
		},

		// Social
		{
			Type:     "latestPost",
			Name:     "Latest Bluesky Post",
			Groups:   []string{"Social"},
			Keywords: []string{"bsky", "atproto", "recent", "feed"},
			Limits:   Limits{MinW: 4},
			CreateNew: func(it *grid.Item) {
				size(it, 4, 4, 8, 8)
			},
		},
		{
			Type:   "githubProfile",
			Name:   "Github Profile",
			Groups: []string{"Social"},
			Limits: Limits{MinW: 2, MinH: 2},
			Migrate: func(it *grid.Item) {
				if _, ok := it.CardData["user"]; ok {
					return
				}
				if href, ok := it.CardData["href"].(string); ok {
					it.CardData["user"] = lastPathSegment(href)
				}
			},
		},
		{
			Type:         "friends",
			Name:         "Friends",
			DefaultColor: "base",
			Groups:       []string{"Social"},
			Limits:       Limits{MinW: 2, MinH: 2},
			CreateNew: func(it *grid.Item) {
				it.CardData["friends"] = []any{}
			},
		},
		{
			Type:         "bigsocial",
			Name:         "Social Icon",
			DefaultColor: "transparent",
			Groups:       []string{"Social"},
			Limits:       Limits{MinW: 2, MinH: 2},
			CreateNew: func(it *grid.Item) {
				it.CardData = map[string]any{"platform": "", "href": ""}
			},
		},
		{
			Type:   "npmxLikesLeaderboard",
			Name:   "npmx Likes Leaderboard",
			Groups: []string{"Social"},
			Limits: Limits{MinW: 3},
			CreateNew: func(it *grid.Item) {
				size(it, 4, 4, 8, 8)
			},
		},
		{
			Type:         "statusphere",
			Name:         "Statusphere",
			CanHaveLabel: true,
			Groups:       []string{"Social"},
			CreateNew: func(it *grid.Item) {
				it.H, it.MobileH = 3, 5
			},
			Migrate: func(it *grid.Item) {
				title, _ := it.CardData["title"].(string)
				label, _ := it.CardData["label"].(string)
				if title != "" && label == "" {
					it.CardData["label"] = title
				}
			},
		},
		{
			Type:   "event",
			Name:   "Event Card",
			Groups: []string{"Social"},
			CreateNew: func(it *grid.Item) {
				size(it, 4, 4, 8, 6)
			},
		},

		// Games
		{
			Type:          "tetris",
			Name:          "Tetris",
			DefaultColor:  "accent",
			AllowSetColor: true,
			CanHaveLabel:  true,
			Groups:        []string{"Games"},
			Keywords:      []string{"blocks", "puzzle", "game", "fun"},
			Limits:        Limits{MaxH: 10},
			CreateNew: func(it *grid.Item) {
				it.CardData = map[string]any{}
				size(it, 4, 6, 8, 12)
			},
		},
		{
			Type:   "dino-game",
			Name:   "Dino Game",
			Groups: []string{"Games"},
			CreateNew: func(it *grid.Item) {
				it.CardData = map[string]any{}
				size(it, 4, 2, 8, 4)
			},
		},
	}
}

func lastPathSegment(href string) string {
	end := len(href)
	for end > 0 && href[end-1] == '/' {
		end--
	}
	start := end
	for start > 0 && href[start-1] != '/' {
		start--
	}
	return href[start:end]
}
