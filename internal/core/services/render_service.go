package services

import (
	"chat-viewer/internal/domain"
	"chat-viewer/internal/ports"
)

// UntitledConversation выводится вместо отсутствующего названия.
const UntitledConversation = "Untitled conversation"

// RenderService строит дерево отображения разговора.
// Входные данные не изменяются; все изменяемое состояние живет в ViewState.
type RenderService struct {
	formatter *TimeFormatter
}

// NewRenderService создает новый экземпляр RenderService.
func NewRenderService(formatter *TimeFormatter) *RenderService {
	return &RenderService{formatter: formatter}
}

var _ ports.Renderer = (*RenderService)(nil)

// WithFormatter возвращает рендерер с другим форматтером времени
// (например, с локалью конкретного запроса).
func (s *RenderService) WithFormatter(formatter *TimeFormatter) *RenderService {
	return &RenderService{formatter: formatter}
}

// Formatter возвращает форматтер времени рендерера.
func (s *RenderService) Formatter() *TimeFormatter {
	return s.formatter
}

// Render строит документ. nil state означает, что все свернуто.
// Карточки и текст вложений попадают в документ только для раскрытых секций.
func (s *RenderService) Render(conv *domain.Conversation, state *domain.ViewState) *domain.Document {
	return s.render(conv, state, false)
}

// RenderStandalone строит документ для вывода без сервера: карточки и текст
// заполнены у всех секций, а Expanded только задает начальное состояние.
func (s *RenderService) RenderStandalone(conv *domain.Conversation, state *domain.ViewState) *domain.Document {
	return s.render(conv, state, true)
}

func (s *RenderService) render(conv *domain.Conversation, state *domain.ViewState, complete bool) *domain.Document {
	if conv == nil {
		return nil
	}
	if state == nil {
		state = domain.NewViewState()
	}

	doc := &domain.Document{
		Title:     conv.Name,
		CreatedAt: s.formatter.Format(conv.CreatedAt),
		Panels:    make([]domain.Panel, 0, len(conv.Messages)),
	}
	if doc.Title == "" {
		doc.Title = UntitledConversation
	}

	for i := range conv.Messages {
		doc.Panels = append(doc.Panels, s.renderPanel(i, &conv.Messages[i], state, complete))
	}

	return doc
}

func (s *RenderService) renderPanel(index int, msg *domain.Message, state *domain.ViewState, complete bool) domain.Panel {
	panel := domain.Panel{
		Index:      index,
		Human:      msg.Sender.IsHuman(),
		Avatar:     AvatarLetter(msg.Sender),
		Label:      SenderLabel(msg.Sender),
		Timestamp:  s.formatter.Format(msg.CreatedAt),
		Paragraphs: SplitParagraphs(msg.Text),
	}

	if len(msg.Attachments) == 0 {
		return panel
	}

	expanded := state.AttachmentsExpanded(index)
	section := &domain.AttachmentSection{
		Count:    len(msg.Attachments),
		Label:    AttachmentCountLabel(len(msg.Attachments)),
		Expanded: expanded,
		Chevron:  Chevron(expanded),
	}

	if expanded || complete {
		section.Cards = make([]domain.Card, 0, len(msg.Attachments))
		for j, att := range msg.Attachments {
			section.Cards = append(section.Cards, renderCard(index, j, att, state, complete))
		}
	}

	panel.Attachments = section
	return panel
}

func renderCard(message, index int, att domain.Attachment, state *domain.ViewState, complete bool) domain.Card {
	card := domain.Card{
		Index:    index,
		FileName: att.FileName,
		Size:     FormatFileSize(att.FileSize),
	}

	if !att.HasContent() {
		return card
	}

	expanded := state.ContentExpanded(message, index)
	card.Content = &domain.ContentBlock{
		Expanded:    expanded,
		ToggleLabel: ContentToggleLabel(expanded),
		Chevron:     Chevron(expanded),
	}
	if expanded || complete {
		card.Content.Text = *att.ExtractedContent
	}

	return card
}
