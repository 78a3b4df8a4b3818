package database

import (
	"context"
	"fmt"

	"nestflow/internal/models"
)

func (db *DB) CreateMessage(ctx context.Context, msg *models.Message) error {
	query := db.Rebind(`INSERT INTO messages (sender_id, receiver_id, property_id, content, is_read, created_at)
              VALUES (?, ?, ?, ?, ?, ?) RETURNING id`)
	createdAt := utcNow()
	id, err := insertReturningID(ctx, db, query,
		msg.SenderID,
		msg.ReceiverID,
		msg.PropertyID,
		msg.Content,
		false,
		createdAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}
	msg.ID = id
	msg.IsRead = false
	msg.CreatedAt = createdAt
	return nil
}

type inboxRow struct {
	models.Message
	ContactName   string `db:"contact_name"`
	PropertyTitle string `db:"property_title"`
}

// ListInbox returns one conversation per (contact, property), newest first.
// Grouping happens here so the query stays portable across drivers.
func (db *DB) ListInbox(ctx context.Context, userID int64) ([]*models.Conversation, error) {
	query := db.Rebind(`SELECT m.id, m.sender_id, m.receiver_id, m.property_id, m.content, m.is_read, m.created_at,
				CASE WHEN m.sender_id = ? THEN ru.username ELSE su.username END AS contact_name,
				p.title AS property_title
              FROM messages m
              JOIN users su ON su.id = m.sender_id
              JOIN users ru ON ru.id = m.receiver_id
              JOIN properties p ON p.id = m.property_id
              WHERE m.sender_id = ? OR m.receiver_id = ?
              ORDER BY m.created_at DESC, m.id DESC`)

	var rows []inboxRow
	if err := db.SelectContext(ctx, &rows, query, userID, userID, userID); err != nil {
		return nil, fmt.Errorf("failed to load inbox: %w", err)
	}

	type key struct{ contact, property int64 }
	index := make(map[key]*models.Conversation)
	inbox := []*models.Conversation{}

	for _, row := range rows {
		contact := row.SenderID
		if contact == userID {
			contact = row.ReceiverID
		}
		k := key{contact: contact, property: row.PropertyID}

		conv, ok := index[k]
		if !ok {
			// rows are newest first, so the first hit is the latest message
			conv = &models.Conversation{
				ContactID:     contact,
				ContactName:   row.ContactName,
				PropertyID:    row.PropertyID,
				PropertyTitle: row.PropertyTitle,
				LastMessage:   row.Content,
				CreatedAt:     row.CreatedAt,
			}
			index[k] = conv
			inbox = append(inbox, conv)
		}
		if row.ReceiverID == userID && row.SenderID == contact && !row.IsRead {
			conv.UnreadCount++
		}
	}
	return inbox, nil
}

// ListChat returns the exchange between two users about one property, oldest first.
func (db *DB) ListChat(ctx context.Context, userID, contactID, propertyID int64) ([]*models.Message, error) {
	query := db.Rebind(`SELECT id, sender_id, receiver_id, property_id, content, is_read, created_at
              FROM messages
              WHERE property_id = ?
                AND ((sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?))
              ORDER BY created_at ASC, id ASC`)

	list := []*models.Message{}
	if err := db.SelectContext(ctx, &list, query, propertyID, userID, contactID, contactID, userID); err != nil {
		return nil, fmt.Errorf("failed to load chat: %w", err)
	}
	return list, nil
}

// MarkConversationRead flips unread messages from contact to user. The flag never reverts.
func (db *DB) MarkConversationRead(ctx context.Context, userID, contactID, propertyID int64) (int64, error) {
	query := db.Rebind(`UPDATE messages SET is_read = ?
              WHERE receiver_id = ? AND sender_id = ? AND property_id = ? AND is_read = ?`)
	result, err := db.ExecContext(ctx, query, true, userID, contactID, propertyID, false)
	if err != nil {
		return 0, fmt.Errorf("failed to mark messages read: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n, nil
}
