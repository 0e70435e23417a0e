package domain

// AttachmentPath адресует вложение по его структурной позиции.
type AttachmentPath struct {
	Message    int
	Attachment int
}

// ViewState хранит состояние представления: какие секции вложений и какие
// блоки содержимого раскрыты. Ключами служат позиции в разговоре, а не идентификаторы
// объектов. Отсутствующий ключ означает "свернуто".
//
// ViewState не потокобезопасен; владелец (сессия или TUI) сериализует доступ.
type ViewState struct {
	attachments map[int]bool
	content     map[AttachmentPath]bool
}

// NewViewState создает состояние, в котором все свернуто.
func NewViewState() *ViewState {
	return &ViewState{
		attachments: make(map[int]bool),
		content:     make(map[AttachmentPath]bool),
	}
}

// ToggleAttachments переключает секцию вложений сообщения и возвращает новое значение.
func (v *ViewState) ToggleAttachments(message int) bool {
	if v.attachments[message] {
		delete(v.attachments, message)
		return false
	}
	v.attachments[message] = true
	return true
}

// ToggleContent переключает блок содержимого вложения и возвращает новое значение.
func (v *ViewState) ToggleContent(message, attachment int) bool {
	p := AttachmentPath{Message: message, Attachment: attachment}
	if v.content[p] {
		delete(v.content, p)
		return false
	}
	v.content[p] = true
	return true
}

// AttachmentsExpanded сообщает, раскрыта ли секция вложений сообщения.
func (v *ViewState) AttachmentsExpanded(message int) bool {
	return v.attachments[message]
}

// ContentExpanded сообщает, раскрыт ли блок содержимого вложения.
func (v *ViewState) ContentExpanded(message, attachment int) bool {
	return v.content[AttachmentPath{Message: message, Attachment: attachment}]
}

// ExpandAll раскрывает все секции вложений и все блоки с содержимым.
func (v *ViewState) ExpandAll(conv *Conversation) {
	if conv == nil {
		return
	}
	for i, msg := range conv.Messages {
		if len(msg.Attachments) == 0 {
			continue
		}
		v.attachments[i] = true
		for j, att := range msg.Attachments {
			if att.HasContent() {
				v.content[AttachmentPath{Message: i, Attachment: j}] = true
			}
		}
	}
}

// Reset сворачивает все.
func (v *ViewState) Reset() {
	v.attachments = make(map[int]bool)
	v.content = make(map[AttachmentPath]bool)
}
