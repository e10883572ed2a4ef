package line

type PushMessageInput struct {
	To   string // LINE user id, e.g. "U4af4980629..."
	Text string
}

type pushMessageRequest struct {
	To       string        `json:"to"`
	Messages []textMessage `json:"messages"`
}

type textMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}
