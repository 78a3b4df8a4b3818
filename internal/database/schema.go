package database

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		role TEXT NOT NULL DEFAULT 'guest' CHECK (role IN ('guest', 'host')),
		bio TEXT,
		avatar_url TEXT,
		created_at DATETIME NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS properties (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		host_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		price_per_night REAL NOT NULL CHECK (price_per_night >= 0),
		location TEXT NOT NULL,
		max_guests INTEGER NOT NULL,
		amenities TEXT NOT NULL DEFAULT '[]',
		created_at DATETIME NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS property_images (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		property_id INTEGER NOT NULL REFERENCES properties(id) ON DELETE CASCADE,
		image_url TEXT NOT NULL,
		is_main BOOLEAN NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS reservations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		property_id INTEGER NOT NULL REFERENCES properties(id) ON DELETE CASCADE,
		guest_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		total_price REAL NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'confirmed', 'cancelled')),
		created_at DATETIME NOT NULL,
		CHECK (start_date < end_date)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_reservations_property_dates ON reservations(property_id, start_date, end_date)`,
	`CREATE INDEX IF NOT EXISTS idx_reservations_guest ON reservations(guest_id)`,
	`CREATE TABLE IF NOT EXISTS reviews (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		property_id INTEGER NOT NULL REFERENCES properties(id) ON DELETE CASCADE,
		guest_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		rating INTEGER NOT NULL CHECK (rating BETWEEN 1 AND 5),
		comment TEXT NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL,
		UNIQUE (guest_id, property_id)
	)`,
	`CREATE TABLE IF NOT EXISTS messages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		sender_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		receiver_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		property_id INTEGER NOT NULL REFERENCES properties(id) ON DELETE CASCADE,
		content TEXT NOT NULL,
		is_read BOOLEAN NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_messages_receiver ON messages(receiver_id, sender_id, property_id)`,
	`CREATE TABLE IF NOT EXISTS sync_queue (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		task_type TEXT NOT NULL,
		reservation_id INTEGER NOT NULL,
		payload TEXT,
		status TEXT NOT NULL DEFAULT 'pending',
		retry_count INTEGER NOT NULL DEFAULT 0,
		last_error TEXT,
		created_at DATETIME NOT NULL,
		processed_at DATETIME,
		next_retry_at DATETIME
	)`,
	`CREATE INDEX IF NOT EXISTS idx_sync_queue_status ON sync_queue(status, next_retry_at)`,
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGSERIAL PRIMARY KEY,
		username TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		role TEXT NOT NULL DEFAULT 'guest' CHECK (role IN ('guest', 'host')),
		bio TEXT,
		avatar_url TEXT,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS properties (
		id BIGSERIAL PRIMARY KEY,
		host_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		price_per_night DOUBLE PRECISION NOT NULL CHECK (price_per_night >= 0),
		location TEXT NOT NULL,
		max_guests INTEGER NOT NULL,
		amenities TEXT NOT NULL DEFAULT '[]',
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS property_images (
		id BIGSERIAL PRIMARY KEY,
		property_id BIGINT NOT NULL REFERENCES properties(id) ON DELETE CASCADE,
		image_url TEXT NOT NULL,
		is_main BOOLEAN NOT NULL DEFAULT FALSE
	)`,
	`CREATE TABLE IF NOT EXISTS reservations (
		id BIGSERIAL PRIMARY KEY,
		property_id BIGINT NOT NULL REFERENCES properties(id) ON DELETE CASCADE,
		guest_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		start_date DATE NOT NULL,
		end_date DATE NOT NULL,
		total_price DOUBLE PRECISION NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'confirmed', 'cancelled')),
		created_at TIMESTAMPTZ NOT NULL,
		CHECK (start_date < end_date)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_reservations_property_dates ON reservations(property_id, start_date, end_date)`,
	`CREATE INDEX IF NOT EXISTS idx_reservations_guest ON reservations(guest_id)`,
	`CREATE TABLE IF NOT EXISTS reviews (
		id BIGSERIAL PRIMARY KEY,
		property_id BIGINT NOT NULL REFERENCES properties(id) ON DELETE CASCADE,
		guest_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		rating INTEGER NOT NULL CHECK (rating BETWEEN 1 AND 5),
		comment TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL,
		UNIQUE (guest_id, property_id)
	)`,
	`CREATE TABLE IF NOT EXISTS messages (
		id BIGSERIAL PRIMARY KEY,
		sender_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		receiver_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		property_id BIGINT NOT NULL REFERENCES properties(id) ON DELETE CASCADE,
		content TEXT NOT NULL,
		is_read BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_messages_receiver ON messages(receiver_id, sender_id, property_id)`,
	`CREATE TABLE IF NOT EXISTS sync_queue (
		id BIGSERIAL PRIMARY KEY,
		task_type TEXT NOT NULL,
		reservation_id BIGINT NOT NULL,
		payload TEXT,
		status TEXT NOT NULL DEFAULT 'pending',
		retry_count INTEGER NOT NULL DEFAULT 0,
		last_error TEXT,
		created_at TIMESTAMPTZ NOT NULL,
		processed_at TIMESTAMPTZ,
		next_retry_at TIMESTAMPTZ
	)`,
	`CREATE INDEX IF NOT EXISTS idx_sync_queue_status ON sync_queue(status, next_retry_at)`,
}
