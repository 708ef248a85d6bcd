package dto

import (
	"github.com/scriptgen-ra/scriptgen/extractor"
	"github.com/scriptgen-ra/scriptgen/storage"
)

// UserProfile is the public view of an account. Copied from model.User,
// never hand-assembled, so field drift is caught in one place.
type UserProfile struct {
	Id        int    `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      int    `json:"role"`
	Status    int    `json:"status"`
	CreatedAt int64  `json:"createdAt"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Token   string      `json:"token,omitempty"`
	User    UserProfile `json:"user"`
}

// GenerateScriptResponse echoes the generated artifacts and where they were
// stored.
type GenerateScriptResponse struct {
	Success          bool                  `json:"success"`
	GenerationID     string                `json:"generationId"`
	MethodFile       string                `json:"methodFile"`
	TestFile         string                `json:"testFile"`
	MethodFilename   string                `json:"methodFilename"`
	TestFilename     string                `json:"testFilename"`
	CombinedFilename string                `json:"combinedFilename"`
	APIDetails       extractor.APIDetails  `json:"apiDetails"`
	Scenarios        []extractor.Scenario  `json:"scenarios"`
	SplitStrategy    string                `json:"splitStrategy"`
	Timestamp        string                `json:"timestamp"`
	FilesSaved       *storage.SavedFiles  `json:"filesSaved"`
}

// GeneratedFilesResponse lists past artifacts.
type GeneratedFilesResponse struct {
	Success         bool                    `json:"success"`
	Files           []storage.GeneratedFile `json:"files"`
	TotalFiles      int                     `json:"totalFiles"`
	OutputDirectory string                  `json:"outputDirectory"`
}
