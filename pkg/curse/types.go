package curse

import "github.com/arthur-debert/wowa/pkg/types"

// Provider name recorded in addon provenance.
const ProviderName = "curse"

// URLPrefix is the addon page prefix accepted as an install locator.
const URLPrefix = "https://www.curseforge.com/wow/addons/"

// GameID is World of Warcraft's CurseForge game id.
const GameID = 1

// Game version type ids per flavor.
const (
	GameVersionTypeRetail  = 517
	GameVersionTypeClassic = 67408
)

// GameVersionTypeID maps a flavor to its CurseForge game version type.
func GameVersionTypeID(f types.Flavor) int {
	if f == types.Classic {
		return GameVersionTypeClassic
	}
	return GameVersionTypeRetail
}

// ReleaseType is the release channel of a file.
type ReleaseType int

const (
	ReleaseTypeRelease ReleaseType = 1
	ReleaseTypeBeta    ReleaseType = 2
	ReleaseTypeAlpha   ReleaseType = 3
)

func (r ReleaseType) String() string {
	switch r {
	case ReleaseTypeRelease:
		return "release"
	case ReleaseTypeBeta:
		return "beta"
	case ReleaseTypeAlpha:
		return "alpha"
	default:
		return "unknown"
	}
}

// HashAlgo identifies a file hash algorithm.
type HashAlgo int

const (
	HashSHA1 HashAlgo = 1
	HashMD5  HashAlgo = 2
)

// Author is a mod author.
type Author struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Links holds a mod's external links.
type Links struct {
	WebsiteURL string `json:"websiteUrl"`
}

// FileIndex is one entry of a mod's latest files index.
type FileIndex struct {
	GameVersion       string      `json:"gameVersion"`
	FileID            int         `json:"fileId"`
	Filename          string      `json:"filename"`
	ReleaseType       ReleaseType `json:"releaseType"`
	GameVersionTypeID int         `json:"gameVersionTypeId"`
}

// Mod is a search result.
type Mod struct {
	ID                 int         `json:"id"`
	GameID             int         `json:"gameId"`
	Name               string      `json:"name"`
	Slug               string      `json:"slug"`
	Summary            string      `json:"summary"`
	Links              Links       `json:"links"`
	Authors            []Author    `json:"authors"`
	LatestFilesIndexes []FileIndex `json:"latestFilesIndexes"`
}

// FileHash is a checksum published for a file.
type FileHash struct {
	Value string   `json:"value"`
	Algo  HashAlgo `json:"algo"`
}

// Module is a top-level folder the file's archive produces.
type Module struct {
	Name        string `json:"name"`
	Fingerprint int64  `json:"fingerprint"`
}

// File is the full metadata of one mod file.
type File struct {
	ID          int         `json:"id"`
	ModID       int         `json:"modId"`
	IsAvailable bool        `json:"isAvailable"`
	DisplayName string      `json:"displayName"`
	FileName    string      `json:"fileName"`
	ReleaseType ReleaseType `json:"releaseType"`
	Hashes      []FileHash  `json:"hashes"`
	FileLength  int64       `json:"fileLength"`
	DownloadURL string      `json:"downloadUrl"`
	Modules     []Module    `json:"modules"`
}

// SHA1 returns the published SHA-1 checksum, if any.
func (f *File) SHA1() string {
	for _, h := range f.Hashes {
		if h.Algo == HashSHA1 {
			return h.Value
		}
	}
	return ""
}

type searchModsResponse struct {
	Data []Mod `json:"data"`
}

type modFileResponse struct {
	Data File `json:"data"`
}
