package models

// Session 游戏会话表
// 一行即一个房间：两名玩家通过房间码绑定到同一局游戏，
// 游戏状态以完整JSON快照形式存在State列中（行级last-write-wins）
type Session struct {
	BaseModel
	SessionID       string `gorm:"uniqueIndex;size:16;not null" json:"session_id"` // 房间码
	Player1ID       string `gorm:"size:64;not null" json:"player1_id"`
	Player1Nickname string `gorm:"size:100" json:"player1_nickname"`
	Player2ID       string `gorm:"size:64;default:''" json:"player2_id"` // 空=尚未有人加入
	Player2Nickname string `gorm:"size:100" json:"player2_nickname"`

	// 游戏风味配置（只透传给问题选择器，引擎不关心）
	RelationshipType   string      `gorm:"size:50" json:"relationship_type"`
	ConversationStyles StringSlice `gorm:"type:json" json:"conversation_styles"`
	CustomQuestion     string      `gorm:"size:500" json:"custom_question"`

	// 游戏状态快照（JSON序列化的game.State）
	State string `gorm:"type:text" json:"state"`
}

// TableName 指定表名
func (Session) TableName() string {
	return "sessions"
}

// HasPlayer2 玩家2是否已加入
func (s *Session) HasPlayer2() bool {
	return s.Player2ID != ""
}
