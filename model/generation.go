package model

import (
	"github.com/Laisky/errors/v2"
)

// Generation is the bookkeeping record of one completed generation: who ran
// it, where the data came from, and which artifacts it produced.
type Generation struct {
	Id               int    `json:"id"`
	UserId           int    `json:"userId" gorm:"index"`
	GenerationId     string `json:"generationId" gorm:"type:varchar(64);uniqueIndex"`
	DataSource       string `json:"dataSource" gorm:"type:varchar(16);index"`
	ScenarioCount    int    `json:"scenarioCount"`
	PromptTokens     int    `json:"promptTokens"`
	SplitStrategy    string `json:"splitStrategy" gorm:"type:varchar(16)"`
	MethodFilename   string `json:"methodFilename"`
	TestFilename     string `json:"testFilename"`
	CombinedFilename string `json:"combinedFilename"`
	CreatedAt        int64  `json:"createdAt" gorm:"bigint;autoCreateTime:milli"`
}

func (g *Generation) Insert() error {
	if err := DB.Create(g).Error; err != nil {
		return errors.Wrap(err, "create generation record")
	}
	return nil
}

// GetGenerationsByUserId pages a user's generation history, newest first.
func GetGenerationsByUserId(userId, startIdx, num int) ([]*Generation, error) {
	var generations []*Generation
	err := DB.Where("user_id = ?", userId).
		Order("id desc").Limit(num).Offset(startIdx).
		Find(&generations).Error
	if err != nil {
		return nil, errors.Wrapf(err, "list generations for user %d", userId)
	}
	return generations, nil
}

func GetGenerationByToken(token string) (*Generation, error) {
	if token == "" {
		return nil, errors.New("generation id is empty")
	}
	var generation Generation
	if err := DB.Where("generation_id = ?", token).First(&generation).Error; err != nil {
		return nil, errors.Wrapf(err, "get generation %s", token)
	}
	return &generation, nil
}
