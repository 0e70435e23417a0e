package domain

// Document описывает дерево отображения разговора, готовое для вывода любым экспортером.
// Строится рендерером из Conversation и ViewState.
type Document struct {
	Title     string  `json:"title"`
	CreatedAt string  `json:"created_at"`
	Panels    []Panel `json:"panels"`
}

// Panel отображает одно сообщение.
type Panel struct {
	Index      int         `json:"index"`
	Human      bool        `json:"human"`
	Avatar     string      `json:"avatar"`
	Label      string      `json:"label"`
	Timestamp  string      `json:"timestamp"`
	Paragraphs []Paragraph `json:"paragraphs"`
	// Attachments равен nil, если у сообщения нет вложений.
	Attachments *AttachmentSection `json:"attachments,omitempty"`
}

// Paragraph содержит абзац текста; строки выводятся с явными переносами.
type Paragraph struct {
	Lines []string `json:"lines"`
}

// AttachmentSection описывает переключаемую секцию вложений сообщения.
type AttachmentSection struct {
	Count    int    `json:"count"`
	Label    string `json:"label"`
	Expanded bool   `json:"expanded"`
	Chevron  string `json:"chevron"`
	// Cards заполняется только в раскрытом состоянии.
	Cards []Card `json:"cards,omitempty"`
}

// Card описывает карточку одного вложения.
type Card struct {
	Index    int    `json:"index"`
	FileName string `json:"file_name"`
	Size     string `json:"size"`
	// Content равен nil, если у вложения нет извлеченного текста.
	Content *ContentBlock `json:"content,omitempty"`
}

// ContentBlock описывает переключаемый блок извлеченного текста.
type ContentBlock struct {
	Expanded    bool   `json:"expanded"`
	ToggleLabel string `json:"toggle_label"`
	Chevron     string `json:"chevron"`
	// Text заполняется только в раскрытом состоянии.
	Text string `json:"text,omitempty"`
}
