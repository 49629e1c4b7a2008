package scrape

// Stage identifica o momento do scraping em que um Event foi emitido.
type Stage string

const (
	StageStart    Stage = "start"
	StageResolved Stage = "resolved"
	StagePage     Stage = "page"
	StageReplies  Stage = "replies"
	StageAuth     Stage = "auth_required"
	StageDone     Stage = "done"
)

// Event é uma notificação de progresso para quem acompanha o scraping ao vivo (WebSocket, CLI).
type Event struct {
	Stage    Stage  `json:"stage"`
	Platform string `json:"platform,omitempty"`
	VideoID  string `json:"video_id,omitempty"`
	Page     int    `json:"page,omitempty"`
	Comments int    `json:"comments"`
	Replies  int    `json:"replies"`
	Message  string `json:"message,omitempty"`
}

// ProgressFunc recebe eventos de progresso. Roda na goroutine do scraping; não deve bloquear.
type ProgressFunc func(Event)

func (f ProgressFunc) emit(e Event) {
	if f != nil {
		f(e)
	}
}
