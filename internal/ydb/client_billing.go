package ydb

import (
	"context"
	"fmt"
	"time"

	app_errors "github.com/lumiforge/adpilot-backend/internal/errors"
	"github.com/ydb-platform/ydb-go-sdk/v3/table"
	"github.com/ydb-platform/ydb-go-sdk/v3/table/result/named"
	"github.com/ydb-platform/ydb-go-sdk/v3/table/types"
)

const addonSlotColumns = `slot_id, user_id, extra_capacity, purchased_at, expires_at, consumed_by_resource_id, consumed_at, payment_id, created_at, updated_at`

func scanAddonSlotRow(res interface {
	ScanNamed(...named.Value) error
}, slot *AddonSlot) error {
	return res.ScanNamed(
		named.Required("slot_id", &slot.SlotID),
		named.Required("user_id", &slot.UserID),
		named.OptionalWithDefault("extra_capacity", &slot.ExtraCapacity),
		named.OptionalWithDefault("purchased_at", &slot.PurchasedAt),
		named.OptionalWithDefault("expires_at", &slot.ExpiresAt),
		named.Optional("consumed_by_resource_id", &slot.ConsumedByResourceID),
		named.Optional("consumed_at", &slot.ConsumedAt),
		named.Optional("payment_id", &slot.PaymentID),
		named.OptionalWithDefault("created_at", &slot.CreatedAt),
		named.OptionalWithDefault("updated_at", &slot.UpdatedAt),
	)
}

// CreateAddonSlots создает пачку слотов (покупка аддона одним платежом)
func (c *YDBClient) CreateAddonSlots(ctx context.Context, slots []*AddonSlot) error {
	query := `
		DECLARE $slot_id AS Text;
		DECLARE $user_id AS Text;
		DECLARE $extra_capacity AS Int64;
		DECLARE $purchased_at AS Timestamp;
		DECLARE $expires_at AS Timestamp;
		DECLARE $consumed_by_resource_id AS Optional<Text>;
		DECLARE $consumed_at AS Optional<Timestamp>;
		DECLARE $payment_id AS Optional<Text>;
		DECLARE $created_at AS Timestamp;
		DECLARE $updated_at AS Timestamp;

		UPSERT INTO addon_slots (` + addonSlotColumns + `)
		VALUES ($slot_id, $user_id, $extra_capacity, $purchased_at, $expires_at, $consumed_by_resource_id, $consumed_at, $payment_id, $created_at, $updated_at)
	`

	now := time.Now()
	return c.driver.Table().Do(ctx, func(ctx context.Context, session table.Session) error {
		for _, slot := range slots {
			if slot.CreatedAt.IsZero() {
				slot.CreatedAt = now
			}
			slot.UpdatedAt = now
			_, _, err := session.Execute(ctx, table.DefaultTxControl(), query,
				table.NewQueryParameters(
					table.ValueParam("$slot_id", types.TextValue(slot.SlotID)),
					table.ValueParam("$user_id", types.TextValue(slot.UserID)),
					table.ValueParam("$extra_capacity", types.Int64Value(slot.ExtraCapacity)),
					table.ValueParam("$purchased_at", types.TimestampValueFromTime(slot.PurchasedAt)),
					table.ValueParam("$expires_at", types.TimestampValueFromTime(slot.ExpiresAt)),
					optionalText("$consumed_by_resource_id", slot.ConsumedByResourceID),
					optionalTimestamp("$consumed_at", slot.ConsumedAt),
					optionalText("$payment_id", slot.PaymentID),
					table.ValueParam("$created_at", types.TimestampValueFromTime(slot.CreatedAt)),
					table.ValueParam("$updated_at", types.TimestampValueFromTime(slot.UpdatedAt)),
				),
			)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// GetAddonSlot получает слот по идентификатору
func (c *YDBClient) GetAddonSlot(ctx context.Context, slotID string) (*AddonSlot, error) {
	query := `
		DECLARE $slot_id AS Text;
		SELECT ` + addonSlotColumns + `
		FROM addon_slots
		WHERE slot_id = $slot_id
	`

	var slot AddonSlot
	var found bool

	err := c.driver.Table().Do(ctx, func(ctx context.Context, session table.Session) error {
		_, res, err := session.Execute(ctx, table.DefaultTxControl(), query,
			table.NewQueryParameters(
				table.ValueParam("$slot_id", types.TextValue(slotID)),
			),
		)
		if err != nil {
			return err
		}
		defer res.Close()

		if res.NextResultSet(ctx) && res.NextRow() {
			found = true
			if err := scanAddonSlotRow(res, &slot); err != nil {
				return fmt.Errorf("scan failed: %w", err)
			}
		}
		return res.Err()
	})

	if err != nil {
		return nil, err
	}
	if !found {
		return nil, app_errors.ErrSlotNotFound
	}
	return &slot, nil
}

// ListAddonSlotsByUser возвращает все слоты пользователя (FIFO по времени покупки)
func (c *YDBClient) ListAddonSlotsByUser(ctx context.Context, userID string) ([]*AddonSlot, error) {
	query := `
		DECLARE $user_id AS Text;
		SELECT ` + addonSlotColumns + `
		FROM addon_slots
		WHERE user_id = $user_id
		ORDER BY purchased_at ASC
	`

	var slots []*AddonSlot

	err := c.driver.Table().Do(ctx, func(ctx context.Context, session table.Session) error {
		_, res, err := session.Execute(ctx, table.DefaultTxControl(), query,
			table.NewQueryParameters(
				table.ValueParam("$user_id", types.TextValue(userID)),
			),
		)
		if err != nil {
			return err
		}
		defer res.Close()

		for res.NextResultSet(ctx) {
			for res.NextRow() {
				var slot AddonSlot
				if err := scanAddonSlotRow(res, &slot); err != nil {
					return fmt.Errorf("scan failed: %w", err)
				}
				slots = append(slots, &slot)
			}
		}
		return res.Err()
	})

	if err != nil {
		return nil, err
	}
	return slots, nil
}

// ReserveAddonSlotTx выбирает самый старый подходящий слот и в той же
// serializable транзакции помечает его потребленным и включает AI на
// кампании. Конкурирующие вызовы за последний слот конфликтуют на строке
// слота: зафиксируется ровно один, второй при повторе увидит пустой пул.
// Возвращает (nil, nil), когда пул исчерпан.
func (c *YDBClient) ReserveAddonSlotTx(ctx context.Context, userID, campaignID string, now time.Time) (*AddonSlot, error) {
	selectQuery := `
		DECLARE $user_id AS Text;
		DECLARE $now AS Timestamp;
		SELECT ` + addonSlotColumns + `
		FROM addon_slots
		WHERE user_id = $user_id
			AND consumed_by_resource_id IS NULL
			AND expires_at > $now
		ORDER BY purchased_at ASC
		LIMIT 1
	`
	consumeQuery := `
		DECLARE $slot_id AS Text;
		DECLARE $campaign_id AS Text;
		DECLARE $now AS Timestamp;

		UPDATE addon_slots
		SET consumed_by_resource_id = $campaign_id, consumed_at = $now, updated_at = $now
		WHERE slot_id = $slot_id;

		UPDATE campaigns
		SET ai_enabled = true, last_auto_action_at = $now, updated_at = $now
		WHERE campaign_id = $campaign_id;
	`

	var reserved *AddonSlot

	err := c.driver.Table().Do(ctx, func(ctx context.Context, session table.Session) error {
		reserved = nil

		tx, err := session.BeginTransaction(ctx, table.TxSettings(table.WithSerializableReadWrite()))
		if err != nil {
			return err
		}
		defer func() {
			_ = tx.Rollback(ctx)
		}()

		res, err := tx.Execute(ctx, selectQuery, table.NewQueryParameters(
			table.ValueParam("$user_id", types.TextValue(userID)),
			table.ValueParam("$now", types.TimestampValueFromTime(now)),
		))
		if err != nil {
			return err
		}

		var slot AddonSlot
		var found bool
		if res.NextResultSet(ctx) && res.NextRow() {
			found = true
			if err := scanAddonSlotRow(res, &slot); err != nil {
				res.Close()
				return fmt.Errorf("scan failed: %w", err)
			}
		}
		if err := res.Err(); err != nil {
			res.Close()
			return err
		}
		res.Close()

		if !found {
			// Пул исчерпан: фиксируем пустую транзакцию, это не ошибка
			_, err = tx.CommitTx(ctx)
			return err
		}

		if _, err := tx.Execute(ctx, consumeQuery, table.NewQueryParameters(
			table.ValueParam("$slot_id", types.TextValue(slot.SlotID)),
			table.ValueParam("$campaign_id", types.TextValue(campaignID)),
			table.ValueParam("$now", types.TimestampValueFromTime(now)),
		)); err != nil {
			return err
		}

		if _, err := tx.CommitTx(ctx); err != nil {
			return err
		}

		slot.ConsumedByResourceID = &campaignID
		consumedAt := now
		slot.ConsumedAt = &consumedAt
		slot.UpdatedAt = now
		reserved = &slot
		return nil
	})

	if err != nil {
		return nil, err
	}
	return reserved, nil
}

// UpdateAddonSlot перезаписывает слот (административные мутации)
func (c *YDBClient) UpdateAddonSlot(ctx context.Context, slot *AddonSlot) error {
	query := `
		DECLARE $slot_id AS Text;
		DECLARE $user_id AS Text;
		DECLARE $extra_capacity AS Int64;
		DECLARE $purchased_at AS Timestamp;
		DECLARE $expires_at AS Timestamp;
		DECLARE $consumed_by_resource_id AS Optional<Text>;
		DECLARE $consumed_at AS Optional<Timestamp>;
		DECLARE $payment_id AS Optional<Text>;
		DECLARE $created_at AS Timestamp;
		DECLARE $updated_at AS Timestamp;

		UPSERT INTO addon_slots (` + addonSlotColumns + `)
		VALUES ($slot_id, $user_id, $extra_capacity, $purchased_at, $expires_at, $consumed_by_resource_id, $consumed_at, $payment_id, $created_at, $updated_at)
	`

	slot.UpdatedAt = time.Now()

	return c.driver.Table().Do(ctx, func(ctx context.Context, session table.Session) error {
		_, _, err := session.Execute(ctx, table.DefaultTxControl(), query,
			table.NewQueryParameters(
				table.ValueParam("$slot_id", types.TextValue(slot.SlotID)),
				table.ValueParam("$user_id", types.TextValue(slot.UserID)),
				table.ValueParam("$extra_capacity", types.Int64Value(slot.ExtraCapacity)),
				table.ValueParam("$purchased_at", types.TimestampValueFromTime(slot.PurchasedAt)),
				table.ValueParam("$expires_at", types.TimestampValueFromTime(slot.ExpiresAt)),
				optionalText("$consumed_by_resource_id", slot.ConsumedByResourceID),
				optionalTimestamp("$consumed_at", slot.ConsumedAt),
				optionalText("$payment_id", slot.PaymentID),
				table.ValueParam("$created_at", types.TimestampValueFromTime(slot.CreatedAt)),
				table.ValueParam("$updated_at", types.TimestampValueFromTime(slot.UpdatedAt)),
			),
		)
		return err
	})
}

// UpsertUsageOverride создает или заменяет оверрайд лимита
func (c *YDBClient) UpsertUsageOverride(ctx context.Context, override *UsageOverride) error {
	query := `
		DECLARE $user_id AS Text;
		DECLARE $override_key AS Text;
		DECLARE $override_value AS Int64;
		DECLARE $expires_at AS Optional<Timestamp>;
		DECLARE $updated_by AS Text;
		DECLARE $created_at AS Timestamp;
		DECLARE $updated_at AS Timestamp;

		UPSERT INTO usage_overrides (user_id, override_key, override_value, expires_at, updated_by, created_at, updated_at)
		VALUES ($user_id, $override_key, $override_value, $expires_at, $updated_by, $created_at, $updated_at)
	`

	now := time.Now()
	if override.CreatedAt.IsZero() {
		override.CreatedAt = now
	}
	override.UpdatedAt = now

	return c.driver.Table().Do(ctx, func(ctx context.Context, session table.Session) error {
		_, _, err := session.Execute(ctx, table.DefaultTxControl(), query,
			table.NewQueryParameters(
				table.ValueParam("$user_id", types.TextValue(override.UserID)),
				table.ValueParam("$override_key", types.TextValue(override.OverrideKey)),
				table.ValueParam("$override_value", types.Int64Value(override.OverrideValue)),
				optionalTimestamp("$expires_at", override.ExpiresAt),
				table.ValueParam("$updated_by", types.TextValue(override.UpdatedBy)),
				table.ValueParam("$created_at", types.TimestampValueFromTime(override.CreatedAt)),
				table.ValueParam("$updated_at", types.TimestampValueFromTime(override.UpdatedAt)),
			),
		)
		return err
	})
}

func scanUsageOverrideRow(res interface {
	ScanNamed(...named.Value) error
}, o *UsageOverride) error {
	return res.ScanNamed(
		named.Required("user_id", &o.UserID),
		named.Required("override_key", &o.OverrideKey),
		named.OptionalWithDefault("override_value", &o.OverrideValue),
		named.Optional("expires_at", &o.ExpiresAt),
		named.OptionalWithDefault("updated_by", &o.UpdatedBy),
		named.OptionalWithDefault("created_at", &o.CreatedAt),
		named.OptionalWithDefault("updated_at", &o.UpdatedAt),
	)
}

// GetUsageOverride получает оверрайд по паре (user_id, key).
// Возвращает (nil, nil), если записи нет: отсутствие оверрайда — штатный случай.
func (c *YDBClient) GetUsageOverride(ctx context.Context, userID, key string) (*UsageOverride, error) {
	query := `
		DECLARE $user_id AS Text;
		DECLARE $override_key AS Text;
		SELECT user_id, override_key, override_value, expires_at, updated_by, created_at, updated_at
		FROM usage_overrides
		WHERE user_id = $user_id AND override_key = $override_key
	`

	var override UsageOverride
	var found bool

	err := c.driver.Table().Do(ctx, func(ctx context.Context, session table.Session) error {
		_, res, err := session.Execute(ctx, table.DefaultTxControl(), query,
			table.NewQueryParameters(
				table.ValueParam("$user_id", types.TextValue(userID)),
				table.ValueParam("$override_key", types.TextValue(key)),
			),
		)
		if err != nil {
			return err
		}
		defer res.Close()

		if res.NextResultSet(ctx) && res.NextRow() {
			found = true
			if err := scanUsageOverrideRow(res, &override); err != nil {
				return fmt.Errorf("scan failed: %w", err)
			}
		}
		return res.Err()
	})

	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return &override, nil
}

// ListUsageOverridesByUser возвращает все оверрайды пользователя
func (c *YDBClient) ListUsageOverridesByUser(ctx context.Context, userID string) ([]*UsageOverride, error) {
	query := `
		DECLARE $user_id AS Text;
		SELECT user_id, override_key, override_value, expires_at, updated_by, created_at, updated_at
		FROM usage_overrides
		WHERE user_id = $user_id
		ORDER BY override_key
	`

	var overrides []*UsageOverride

	err := c.driver.Table().Do(ctx, func(ctx context.Context, session table.Session) error {
		_, res, err := session.Execute(ctx, table.DefaultTxControl(), query,
			table.NewQueryParameters(
				table.ValueParam("$user_id", types.TextValue(userID)),
			),
		)
		if err != nil {
			return err
		}
		defer res.Close()

		for res.NextResultSet(ctx) {
			for res.NextRow() {
				var o UsageOverride
				if err := scanUsageOverrideRow(res, &o); err != nil {
					return fmt.Errorf("scan failed: %w", err)
				}
				overrides = append(overrides, &o)
			}
		}
		return res.Err()
	})

	if err != nil {
		return nil, err
	}
	return overrides, nil
}

// DeleteUsageOverride удаляет оверрайд; возвращает true, если запись существовала
func (c *YDBClient) DeleteUsageOverride(ctx context.Context, userID, key string) (bool, error) {
	selectQuery := `
		DECLARE $user_id AS Text;
		DECLARE $override_key AS Text;
		SELECT override_key
		FROM usage_overrides
		WHERE user_id = $user_id AND override_key = $override_key
	`
	deleteQuery := `
		DECLARE $user_id AS Text;
		DECLARE $override_key AS Text;
		DELETE FROM usage_overrides
		WHERE user_id = $user_id AND override_key = $override_key
	`

	var existed bool

	err := c.driver.Table().Do(ctx, func(ctx context.Context, session table.Session) error {
		existed = false

		tx, err := session.BeginTransaction(ctx, table.TxSettings(table.WithSerializableReadWrite()))
		if err != nil {
			return err
		}
		defer func() {
			_ = tx.Rollback(ctx)
		}()

		params := table.NewQueryParameters(
			table.ValueParam("$user_id", types.TextValue(userID)),
			table.ValueParam("$override_key", types.TextValue(key)),
		)

		res, err := tx.Execute(ctx, selectQuery, params)
		if err != nil {
			return err
		}
		if res.NextResultSet(ctx) && res.NextRow() {
			existed = true
		}
		if err := res.Err(); err != nil {
			res.Close()
			return err
		}
		res.Close()

		if existed {
			if _, err := tx.Execute(ctx, deleteQuery, params); err != nil {
				return err
			}
		}

		_, err = tx.CommitTx(ctx)
		return err
	})

	if err != nil {
		return false, err
	}
	return existed, nil
}

const paymentColumns = `payment_id, user_id, provider_order_id, provider_payment_id, amount_rub, status, payment_for, related_reference_id, created_at, updated_at, captured_at`

func scanPaymentRow(res interface {
	ScanNamed(...named.Value) error
}, p *Payment) error {
	return res.ScanNamed(
		named.Required("payment_id", &p.PaymentID),
		named.Required("user_id", &p.UserID),
		named.Required("provider_order_id", &p.ProviderOrderID),
		named.Optional("provider_payment_id", &p.ProviderPaymentID),
		named.OptionalWithDefault("amount_rub", &p.AmountRub),
		named.Required("status", &p.Status),
		named.OptionalWithDefault("payment_for", &p.PaymentFor),
		named.Optional("related_reference_id", &p.RelatedReferenceID),
		named.OptionalWithDefault("created_at", &p.CreatedAt),
		named.OptionalWithDefault("updated_at", &p.UpdatedAt),
		named.Optional("captured_at", &p.CapturedAt),
	)
}

// CreatePayment создает запись платежа
func (c *YDBClient) CreatePayment(ctx context.Context, payment *Payment) error {
	query := `
		DECLARE $payment_id AS Text;
		DECLARE $user_id AS Text;
		DECLARE $provider_order_id AS Text;
		DECLARE $provider_payment_id AS Optional<Text>;
		DECLARE $amount_rub AS Double;
		DECLARE $status AS Text;
		DECLARE $payment_for AS Text;
		DECLARE $related_reference_id AS Optional<Text>;
		DECLARE $created_at AS Timestamp;
		DECLARE $updated_at AS Timestamp;
		DECLARE $captured_at AS Optional<Timestamp>;

		UPSERT INTO payments (` + paymentColumns + `)
		VALUES ($payment_id, $user_id, $provider_order_id, $provider_payment_id, $amount_rub, $status, $payment_for, $related_reference_id, $created_at, $updated_at, $captured_at)
	`

	now := time.Now()
	if payment.CreatedAt.IsZero() {
		payment.CreatedAt = now
	}
	payment.UpdatedAt = now

	return c.driver.Table().Do(ctx, func(ctx context.Context, session table.Session) error {
		_, _, err := session.Execute(ctx, table.DefaultTxControl(), query,
			table.NewQueryParameters(
				table.ValueParam("$payment_id", types.TextValue(payment.PaymentID)),
				table.ValueParam("$user_id", types.TextValue(payment.UserID)),
				table.ValueParam("$provider_order_id", types.TextValue(payment.ProviderOrderID)),
				optionalText("$provider_payment_id", payment.ProviderPaymentID),
				table.ValueParam("$amount_rub", types.DoubleValue(payment.AmountRub)),
				table.ValueParam("$status", types.TextValue(payment.Status)),
				table.ValueParam("$payment_for", types.TextValue(payment.PaymentFor)),
				optionalText("$related_reference_id", payment.RelatedReferenceID),
				table.ValueParam("$created_at", types.TimestampValueFromTime(payment.CreatedAt)),
				table.ValueParam("$updated_at", types.TimestampValueFromTime(payment.UpdatedAt)),
				optionalTimestamp("$captured_at", payment.CapturedAt),
			),
		)
		return err
	})
}

func (c *YDBClient) scanPayment(ctx context.Context, query string, params *table.QueryParameters) (*Payment, error) {
	var payment Payment
	var found bool

	err := c.driver.Table().Do(ctx, func(ctx context.Context, session table.Session) error {
		_, res, err := session.Execute(ctx, table.DefaultTxControl(), query, params)
		if err != nil {
			return err
		}
		defer res.Close()

		if res.NextResultSet(ctx) && res.NextRow() {
			found = true
			if err := scanPaymentRow(res, &payment); err != nil {
				return fmt.Errorf("scan failed: %w", err)
			}
		}
		return res.Err()
	})

	if err != nil {
		return nil, err
	}
	if !found {
		return nil, app_errors.ErrPaymentNotFound
	}
	return &payment, nil
}

// GetPaymentByID получает платеж по идентификатору
func (c *YDBClient) GetPaymentByID(ctx context.Context, paymentID string) (*Payment, error) {
	query := `
		DECLARE $payment_id AS Text;
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE payment_id = $payment_id
	`
	return c.scanPayment(ctx, query, table.NewQueryParameters(
		table.ValueParam("$payment_id", types.TextValue(paymentID)),
	))
}

// GetPaymentByProviderOrderID получает платеж по заказу провайдера
func (c *YDBClient) GetPaymentByProviderOrderID(ctx context.Context, providerOrderID string) (*Payment, error) {
	query := `
		DECLARE $provider_order_id AS Text;
		SELECT ` + paymentColumns + `
		FROM payments VIEW provider_order_idx
		WHERE provider_order_id = $provider_order_id
	`
	return c.scanPayment(ctx, query, table.NewQueryParameters(
		table.ValueParam("$provider_order_id", types.TextValue(providerOrderID)),
	))
}

// MarkPaymentCaptured помечает платеж захваченным. Условие на статус делает
// операцию идемпотентной: повторный вызов не меняет ни одной строки.
func (c *YDBClient) MarkPaymentCaptured(ctx context.Context, paymentID, providerPaymentID string, at time.Time) error {
	query := `
		DECLARE $payment_id AS Text;
		DECLARE $provider_payment_id AS Text;
		DECLARE $at AS Timestamp;

		UPDATE payments
		SET status = 'captured', provider_payment_id = $provider_payment_id, captured_at = $at, updated_at = $at
		WHERE payment_id = $payment_id AND status = 'created'
	`

	return c.driver.Table().Do(ctx, func(ctx context.Context, session table.Session) error {
		_, _, err := session.Execute(ctx, table.DefaultTxControl(), query,
			table.NewQueryParameters(
				table.ValueParam("$payment_id", types.TextValue(paymentID)),
				table.ValueParam("$provider_payment_id", types.TextValue(providerPaymentID)),
				table.ValueParam("$at", types.TimestampValueFromTime(at)),
			),
		)
		return err
	})
}

// MarkPaymentFailed помечает платеж неуспешным
func (c *YDBClient) MarkPaymentFailed(ctx context.Context, paymentID string, at time.Time) error {
	query := `
		DECLARE $payment_id AS Text;
		DECLARE $at AS Timestamp;

		UPDATE payments
		SET status = 'failed', updated_at = $at
		WHERE payment_id = $payment_id AND status = 'created'
	`

	return c.driver.Table().Do(ctx, func(ctx context.Context, session table.Session) error {
		_, _, err := session.Execute(ctx, table.DefaultTxControl(), query,
			table.NewQueryParameters(
				table.ValueParam("$payment_id", types.TextValue(paymentID)),
				table.ValueParam("$at", types.TimestampValueFromTime(at)),
			),
		)
		return err
	})
}

// MarkPaymentRefunded помечает платеж возвращенным
func (c *YDBClient) MarkPaymentRefunded(ctx context.Context, paymentID string, at time.Time) error {
	query := `
		DECLARE $payment_id AS Text;
		DECLARE $at AS Timestamp;

		UPDATE payments
		SET status = 'refunded', updated_at = $at
		WHERE payment_id = $payment_id AND status = 'captured'
	`

	return c.driver.Table().Do(ctx, func(ctx context.Context, session table.Session) error {
		_, _, err := session.Execute(ctx, table.DefaultTxControl(), query,
			table.NewQueryParameters(
				table.ValueParam("$payment_id", types.TextValue(paymentID)),
				table.ValueParam("$at", types.TimestampValueFromTime(at)),
			),
		)
		return err
	})
}

const invoiceColumns = `invoice_id, payment_id, user_id, subscription_id, amount_rub, status, issued_at, updated_at, archive_key`

func scanInvoiceRow(res interface {
	ScanNamed(...named.Value) error
}, inv *Invoice) error {
	return res.ScanNamed(
		named.Required("invoice_id", &inv.InvoiceID),
		named.Required("payment_id", &inv.PaymentID),
		named.Required("user_id", &inv.UserID),
		named.Required("subscription_id", &inv.SubscriptionID),
		named.OptionalWithDefault("amount_rub", &inv.AmountRub),
		named.Required("status", &inv.Status),
		named.OptionalWithDefault("issued_at", &inv.IssuedAt),
		named.OptionalWithDefault("updated_at", &inv.UpdatedAt),
		named.Optional("archive_key", &inv.ArchiveKey),
	)
}

// GetInvoiceByPaymentID получает счет по платежу.
// Возвращает (nil, nil), если счета еще нет.
func (c *YDBClient) GetInvoiceByPaymentID(ctx context.Context, paymentID string) (*Invoice, error) {
	query := `
		DECLARE $payment_id AS Text;
		SELECT ` + invoiceColumns + `
		FROM invoices VIEW payment_idx
		WHERE payment_id = $payment_id
	`

	var invoice Invoice
	var found bool

	err := c.driver.Table().Do(ctx, func(ctx context.Context, session table.Session) error {
		_, res, err := session.Execute(ctx, table.DefaultTxControl(), query,
			table.NewQueryParameters(
				table.ValueParam("$payment_id", types.TextValue(paymentID)),
			),
		)
		if err != nil {
			return err
		}
		defer res.Close()

		if res.NextResultSet(ctx) && res.NextRow() {
			found = true
			if err := scanInvoiceRow(res, &invoice); err != nil {
				return fmt.Errorf("scan failed: %w", err)
			}
		}
		return res.Err()
	})

	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return &invoice, nil
}

// ListInvoicesByUser возвращает счета пользователя
func (c *YDBClient) ListInvoicesByUser(ctx context.Context, userID string) ([]*Invoice, error) {
	query := `
		DECLARE $user_id AS Text;
		SELECT ` + invoiceColumns + `
		FROM invoices VIEW user_idx
		WHERE user_id = $user_id
		ORDER BY issued_at DESC
	`

	var invoices []*Invoice

	err := c.driver.Table().Do(ctx, func(ctx context.Context, session table.Session) error {
		_, res, err := session.Execute(ctx, table.DefaultTxControl(), query,
			table.NewQueryParameters(
				table.ValueParam("$user_id", types.TextValue(userID)),
			),
		)
		if err != nil {
			return err
		}
		defer res.Close()

		for res.NextResultSet(ctx) {
			for res.NextRow() {
				var inv Invoice
				if err := scanInvoiceRow(res, &inv); err != nil {
					return fmt.Errorf("scan failed: %w", err)
				}
				invoices = append(invoices, &inv)
			}
		}
		return res.Err()
	})

	if err != nil {
		return nil, err
	}
	return invoices, nil
}

// UpdateInvoiceStatus обновляет статус счета
func (c *YDBClient) UpdateInvoiceStatus(ctx context.Context, invoiceID, status string) error {
	query := `
		DECLARE $invoice_id AS Text;
		DECLARE $status AS Text;
		DECLARE $updated_at AS Timestamp;

		UPDATE invoices
		SET status = $status, updated_at = $updated_at
		WHERE invoice_id = $invoice_id
	`

	return c.driver.Table().Do(ctx, func(ctx context.Context, session table.Session) error {
		_, _, err := session.Execute(ctx, table.DefaultTxControl(), query,
			table.NewQueryParameters(
				table.ValueParam("$invoice_id", types.TextValue(invoiceID)),
				table.ValueParam("$status", types.TextValue(status)),
				table.ValueParam("$updated_at", types.TimestampValueFromTime(time.Now())),
			),
		)
		return err
	})
}

// SetInvoiceArchiveKey сохраняет ключ архивной копии счета в object storage
func (c *YDBClient) SetInvoiceArchiveKey(ctx context.Context, invoiceID, archiveKey string) error {
	query := `
		DECLARE $invoice_id AS Text;
		DECLARE $archive_key AS Optional<Text>;
		DECLARE $updated_at AS Timestamp;

		UPDATE invoices
		SET archive_key = $archive_key, updated_at = $updated_at
		WHERE invoice_id = $invoice_id
	`

	return c.driver.Table().Do(ctx, func(ctx context.Context, session table.Session) error {
		_, _, err := session.Execute(ctx, table.DefaultTxControl(), query,
			table.NewQueryParameters(
				table.ValueParam("$invoice_id", types.TextValue(invoiceID)),
				table.ValueParam("$archive_key", types.OptionalValue(types.TextValue(archiveKey))),
				table.ValueParam("$updated_at", types.TimestampValueFromTime(time.Now())),
			),
		)
		return err
	})
}

const campaignColumns = `campaign_id, user_id, ad_account_id, name, ai_enabled, last_auto_action_at, created_at, updated_at`

func scanCampaignRow(res interface {
	ScanNamed(...named.Value) error
}, campaign *Campaign) error {
	return res.ScanNamed(
		named.Required("campaign_id", &campaign.CampaignID),
		named.Required("user_id", &campaign.UserID),
		named.OptionalWithDefault("ad_account_id", &campaign.AdAccountID),
		named.OptionalWithDefault("name", &campaign.Name),
		named.OptionalWithDefault("ai_enabled", &campaign.AIEnabled),
		named.Optional("last_auto_action_at", &campaign.LastAutoActionAt),
		named.OptionalWithDefault("created_at", &campaign.CreatedAt),
		named.OptionalWithDefault("updated_at", &campaign.UpdatedAt),
	)
}

// CreateCampaign создает кампанию
func (c *YDBClient) CreateCampaign(ctx context.Context, campaign *Campaign) error {
	query := `
		DECLARE $campaign_id AS Text;
		DECLARE $user_id AS Text;
		DECLARE $ad_account_id AS Text;
		DECLARE $name AS Text;
		DECLARE $ai_enabled AS Bool;
		DECLARE $last_auto_action_at AS Optional<Timestamp>;
		DECLARE $created_at AS Timestamp;
		DECLARE $updated_at AS Timestamp;

		UPSERT INTO campaigns (` + campaignColumns + `)
		VALUES ($campaign_id, $user_id, $ad_account_id, $name, $ai_enabled, $last_auto_action_at, $created_at, $updated_at)
	`

	now := time.Now()
	if campaign.CreatedAt.IsZero() {
		campaign.CreatedAt = now
	}
	campaign.UpdatedAt = now

	return c.driver.Table().Do(ctx, func(ctx context.Context, session table.Session) error {
		_, _, err := session.Execute(ctx, table.DefaultTxControl(), query,
			table.NewQueryParameters(
				table.ValueParam("$campaign_id", types.TextValue(campaign.CampaignID)),
				table.ValueParam("$user_id", types.TextValue(campaign.UserID)),
				table.ValueParam("$ad_account_id", types.TextValue(campaign.AdAccountID)),
				table.ValueParam("$name", types.TextValue(campaign.Name)),
				table.ValueParam("$ai_enabled", types.BoolValue(campaign.AIEnabled)),
				optionalTimestamp("$last_auto_action_at", campaign.LastAutoActionAt),
				table.ValueParam("$created_at", types.TimestampValueFromTime(campaign.CreatedAt)),
				table.ValueParam("$updated_at", types.TimestampValueFromTime(campaign.UpdatedAt)),
			),
		)
		return err
	})
}

// GetCampaign получает кампанию по идентификатору
func (c *YDBClient) GetCampaign(ctx context.Context, campaignID string) (*Campaign, error) {
	query := `
		DECLARE $campaign_id AS Text;
		SELECT ` + campaignColumns + `
		FROM campaigns
		WHERE campaign_id = $campaign_id
	`

	var campaign Campaign
	var found bool

	err := c.driver.Table().Do(ctx, func(ctx context.Context, session table.Session) error {
		_, res, err := session.Execute(ctx, table.DefaultTxControl(), query,
			table.NewQueryParameters(
				table.ValueParam("$campaign_id", types.TextValue(campaignID)),
			),
		)
		if err != nil {
			return err
		}
		defer res.Close()

		if res.NextResultSet(ctx) && res.NextRow() {
			found = true
			if err := scanCampaignRow(res, &campaign); err != nil {
				return fmt.Errorf("scan failed: %w", err)
			}
		}
		return res.Err()
	})

	if err != nil {
		return nil, err
	}
	if !found {
		return nil, app_errors.ErrCampaignNotFound
	}
	return &campaign, nil
}

// CountActiveAICampaigns возвращает число кампаний пользователя с включенным AI
func (c *YDBClient) CountActiveAICampaigns(ctx context.Context, userID string) (int64, error) {
	query := `
		DECLARE $user_id AS Text;
		SELECT COUNT(*) AS cnt
		FROM campaigns
		WHERE user_id = $user_id AND ai_enabled = true
	`

	var count uint64

	err := c.driver.Table().Do(ctx, func(ctx context.Context, session table.Session) error {
		_, res, err := session.Execute(ctx, table.DefaultTxControl(), query,
			table.NewQueryParameters(
				table.ValueParam("$user_id", types.TextValue(userID)),
			),
		)
		if err != nil {
			return err
		}
		defer res.Close()

		if res.NextResultSet(ctx) && res.NextRow() {
			if err := res.ScanNamed(named.Required("cnt", &count)); err != nil {
				return fmt.Errorf("scan failed: %w", err)
			}
		}
		return res.Err()
	})

	if err != nil {
		return 0, err
	}
	return int64(count), nil
}

// EnableCampaignAI включает AI на кампании и фиксирует время автодействия
func (c *YDBClient) EnableCampaignAI(ctx context.Context, campaignID string, at time.Time) error {
	query := `
		DECLARE $campaign_id AS Text;
		DECLARE $at AS Timestamp;

		UPDATE campaigns
		SET ai_enabled = true, last_auto_action_at = $at, updated_at = $at
		WHERE campaign_id = $campaign_id
	`

	return c.driver.Table().Do(ctx, func(ctx context.Context, session table.Session) error {
		_, _, err := session.Execute(ctx, table.DefaultTxControl(), query,
			table.NewQueryParameters(
				table.ValueParam("$campaign_id", types.TextValue(campaignID)),
				table.ValueParam("$at", types.TimestampValueFromTime(at)),
			),
		)
		return err
	})
}

// DisableCampaignAI выключает AI на кампании
func (c *YDBClient) DisableCampaignAI(ctx context.Context, campaignID string) error {
	query := `
		DECLARE $campaign_id AS Text;
		DECLARE $updated_at AS Timestamp;

		UPDATE campaigns
		SET ai_enabled = false, updated_at = $updated_at
		WHERE campaign_id = $campaign_id
	`

	return c.driver.Table().Do(ctx, func(ctx context.Context, session table.Session) error {
		_, _, err := session.Execute(ctx, table.DefaultTxControl(), query,
			table.NewQueryParameters(
				table.ValueParam("$campaign_id", types.TextValue(campaignID)),
				table.ValueParam("$updated_at", types.TimestampValueFromTime(time.Now())),
			),
		)
		return err
	})
}

// GetDailyActionCount возвращает счетчик действий пользователя за день
func (c *YDBClient) GetDailyActionCount(ctx context.Context, userID, day string) (int64, error) {
	query := `
		DECLARE $user_id AS Text;
		DECLARE $day AS Text;
		SELECT action_count
		FROM action_counters
		WHERE user_id = $user_id AND day = $day
	`

	var count int64

	err := c.driver.Table().Do(ctx, func(ctx context.Context, session table.Session) error {
		_, res, err := session.Execute(ctx, table.DefaultTxControl(), query,
			table.NewQueryParameters(
				table.ValueParam("$user_id", types.TextValue(userID)),
				table.ValueParam("$day", types.TextValue(day)),
			),
		)
		if err != nil {
			return err
		}
		defer res.Close()

		if res.NextResultSet(ctx) && res.NextRow() {
			if err := res.ScanNamed(named.OptionalWithDefault("action_count", &count)); err != nil {
				return fmt.Errorf("scan failed: %w", err)
			}
		}
		return res.Err()
	})

	if err != nil {
		return 0, err
	}
	return count, nil
}

// IncrementDailyActionCount увеличивает счетчик действий за день
func (c *YDBClient) IncrementDailyActionCount(ctx context.Context, userID, day string) error {
	query := `
		DECLARE $user_id AS Text;
		DECLARE $day AS Text;
		DECLARE $updated_at AS Timestamp;

		UPSERT INTO action_counters (user_id, day, action_count, updated_at)
		SELECT $user_id AS user_id, $day AS day,
			COALESCE((SELECT action_count FROM action_counters WHERE user_id = $user_id AND day = $day), 0) + 1 AS action_count,
			$updated_at AS updated_at;
	`

	return c.driver.Table().Do(ctx, func(ctx context.Context, session table.Session) error {
		_, _, err := session.Execute(ctx, table.DefaultTxControl(), query,
			table.NewQueryParameters(
				table.ValueParam("$user_id", types.TextValue(userID)),
				table.ValueParam("$day", types.TextValue(day)),
				table.ValueParam("$updated_at", types.TimestampValueFromTime(time.Now())),
			),
		)
		return err
	})
}

// defaultFlagID — единственная запись административных флагов
const defaultFlagID = "default"

// GetRuntimeFlags читает запись административных флагов.
// Если запись отсутствует, возвращает дефолтную (всё включено, версия 0).
func (c *YDBClient) GetRuntimeFlags(ctx context.Context) (*RuntimeFlags, error) {
	query := `
		DECLARE $flag_id AS Text;
		SELECT flag_id, kill_switch, ai_automation_enabled, version, updated_by, updated_at
		FROM runtime_flags
		WHERE flag_id = $flag_id
	`

	flags := &RuntimeFlags{
		FlagID:              defaultFlagID,
		KillSwitch:          false,
		AIAutomationEnabled: true,
	}

	err := c.driver.Table().Do(ctx, func(ctx context.Context, session table.Session) error {
		_, res, err := session.Execute(ctx, table.DefaultTxControl(), query,
			table.NewQueryParameters(
				table.ValueParam("$flag_id", types.TextValue(defaultFlagID)),
			),
		)
		if err != nil {
			return err
		}
		defer res.Close()

		if res.NextResultSet(ctx) && res.NextRow() {
			err := res.ScanNamed(
				named.Required("flag_id", &flags.FlagID),
				named.OptionalWithDefault("kill_switch", &flags.KillSwitch),
				named.OptionalWithDefault("ai_automation_enabled", &flags.AIAutomationEnabled),
				named.OptionalWithDefault("version", &flags.Version),
				named.OptionalWithDefault("updated_by", &flags.UpdatedBy),
				named.OptionalWithDefault("updated_at", &flags.UpdatedAt),
			)
			if err != nil {
				return fmt.Errorf("scan failed: %w", err)
			}
		}
		return res.Err()
	})

	if err != nil {
		return nil, err
	}
	return flags, nil
}

// UpdateRuntimeFlags записывает новую версию административных флагов
func (c *YDBClient) UpdateRuntimeFlags(ctx context.Context, flags *RuntimeFlags) error {
	query := `
		DECLARE $flag_id AS Text;
		DECLARE $kill_switch AS Bool;
		DECLARE $ai_automation_enabled AS Bool;
		DECLARE $version AS Int64;
		DECLARE $updated_by AS Text;
		DECLARE $updated_at AS Timestamp;

		UPSERT INTO runtime_flags (flag_id, kill_switch, ai_automation_enabled, version, updated_by, updated_at)
		VALUES ($flag_id, $kill_switch, $ai_automation_enabled, $version, $updated_by, $updated_at)
	`

	flags.FlagID = defaultFlagID
	flags.UpdatedAt = time.Now()

	return c.driver.Table().Do(ctx, func(ctx context.Context, session table.Session) error {
		_, _, err := session.Execute(ctx, table.DefaultTxControl(), query,
			table.NewQueryParameters(
				table.ValueParam("$flag_id", types.TextValue(flags.FlagID)),
				table.ValueParam("$kill_switch", types.BoolValue(flags.KillSwitch)),
				table.ValueParam("$ai_automation_enabled", types.BoolValue(flags.AIAutomationEnabled)),
				table.ValueParam("$version", types.Int64Value(flags.Version)),
				table.ValueParam("$updated_by", types.TextValue(flags.UpdatedBy)),
				table.ValueParam("$updated_at", types.TimestampValueFromTime(flags.UpdatedAt)),
			),
		)
		return err
	})
}

// InsertAuditLog вставляет запись аудита
func (c *YDBClient) InsertAuditLog(ctx context.Context, auditLog *AuditLog) error {
	query := `
		DECLARE $id AS Text;
		DECLARE $timestamp AS Timestamp;
		DECLARE $user_id AS Optional<Text>;
		DECLARE $actor_id AS Optional<Text>;
		DECLARE $action_type AS Text;
		DECLARE $action_result AS Text;
		DECLARE $ip_address AS Optional<Text>;
		DECLARE $user_agent AS Optional<Text>;
		DECLARE $details AS Json;

		UPSERT INTO audit_logs (id, timestamp, user_id, actor_id, action_type, action_result, ip_address, user_agent, details)
		VALUES ($id, $timestamp, $user_id, $actor_id, $action_type, $action_result, $ip_address, $user_agent, $details)
	`

	detailsJSON := auditLog.DetailsJSON
	if detailsJSON == "" {
		detailsJSON = "{}"
	}

	return c.driver.Table().Do(ctx, func(ctx context.Context, session table.Session) error {
		_, _, err := session.Execute(ctx, table.DefaultTxControl(), query,
			table.NewQueryParameters(
				table.ValueParam("$id", types.TextValue(auditLog.ID)),
				table.ValueParam("$timestamp", types.TimestampValueFromTime(auditLog.Timestamp)),
				optionalText("$user_id", auditLog.UserID),
				optionalText("$actor_id", auditLog.ActorID),
				table.ValueParam("$action_type", types.TextValue(auditLog.ActionType)),
				table.ValueParam("$action_result", types.TextValue(auditLog.ActionResult)),
				optionalText("$ip_address", auditLog.IPAddress),
				optionalText("$user_agent", auditLog.UserAgent),
				table.ValueParam("$details", types.JSONValue(detailsJSON)),
			),
		)
		return err
	})
}

// ListAuditLogs возвращает записи аудита по фильтру
func (c *YDBClient) ListAuditLogs(ctx context.Context, filter *AuditLogFilter) ([]*AuditLog, error) {
	query := `
		DECLARE $user_id AS Text;
		DECLARE $actor_id AS Text;
		DECLARE $action_type AS Text;
		DECLARE $result AS Text;
		DECLARE $limit AS Uint64;

		SELECT id, timestamp, user_id, actor_id, action_type, action_result, ip_address, user_agent, details
		FROM audit_logs
		WHERE ($user_id = '' OR user_id = $user_id)
			AND ($actor_id = '' OR actor_id = $actor_id)
			AND ($action_type = '' OR action_type = $action_type)
			AND ($result = '' OR action_result = $result)
		ORDER BY timestamp DESC
		LIMIT $limit
	`

	limit := filter.Limit
	if limit <= 0 || limit > 1000 {
		limit = 100
	}

	var logs []*AuditLog

	err := c.driver.Table().Do(ctx, func(ctx context.Context, session table.Session) error {
		_, res, err := session.Execute(ctx, table.DefaultTxControl(), query,
			table.NewQueryParameters(
				table.ValueParam("$user_id", types.TextValue(filter.UserID)),
				table.ValueParam("$actor_id", types.TextValue(filter.ActorID)),
				table.ValueParam("$action_type", types.TextValue(filter.ActionType)),
				table.ValueParam("$result", types.TextValue(filter.Result)),
				table.ValueParam("$limit", types.Uint64Value(uint64(limit))),
			),
		)
		if err != nil {
			return err
		}
		defer res.Close()

		for res.NextResultSet(ctx) {
			for res.NextRow() {
				var entry AuditLog
				err := res.ScanNamed(
					named.Required("id", &entry.ID),
					named.OptionalWithDefault("timestamp", &entry.Timestamp),
					named.Optional("user_id", &entry.UserID),
					named.Optional("actor_id", &entry.ActorID),
					named.Required("action_type", &entry.ActionType),
					named.Required("action_result", &entry.ActionResult),
					named.Optional("ip_address", &entry.IPAddress),
					named.Optional("user_agent", &entry.UserAgent),
					named.OptionalWithDefault("details", &entry.DetailsJSON),
				)
				if err != nil {
					return fmt.Errorf("scan failed: %w", err)
				}
				logs = append(logs, &entry)
			}
		}
		return res.Err()
	})

	if err != nil {
		return nil, err
	}
	return logs, nil
}

// CreateEmailLog сохраняет лог отправленного email
func (c *YDBClient) CreateEmailLog(ctx context.Context, log *EmailLog) error {
	query := `
		DECLARE $email_id AS Text;
		DECLARE $user_id AS Text;
		DECLARE $email_type AS Text;
		DECLARE $recipient AS Text;
		DECLARE $status AS Text;
		DECLARE $postbox_message_id AS Text;
		DECLARE $sent_at AS Timestamp;
		DECLARE $delivered_at AS Optional<Timestamp>;
		DECLARE $error_message AS Optional<Text>;

		UPSERT INTO email_logs (
			email_id, user_id, email_type, recipient, status, postbox_message_id, sent_at, delivered_at, error_message
		) VALUES ($email_id, $user_id, $email_type, $recipient, $status, $postbox_message_id, $sent_at, $delivered_at, $error_message)
	`

	return c.driver.Table().Do(ctx, func(ctx context.Context, session table.Session) error {
		_, _, err := session.Execute(ctx, table.DefaultTxControl(), query,
			table.NewQueryParameters(
				table.ValueParam("$email_id", types.TextValue(log.EmailID)),
				table.ValueParam("$user_id", types.TextValue(log.UserID)),
				table.ValueParam("$email_type", types.TextValue(log.EmailType)),
				table.ValueParam("$recipient", types.TextValue(log.Recipient)),
				table.ValueParam("$status", types.TextValue(log.Status)),
				table.ValueParam("$postbox_message_id", types.TextValue(log.PostboxMessageID)),
				table.ValueParam("$sent_at", types.TimestampValueFromTime(log.SentAt)),
				optionalTimestamp("$delivered_at", log.DeliveredAt),
				optionalText("$error_message", log.ErrorMessage),
			),
		)
		return err
	})
}
