package postgres

import (
	"encoding/json"
	"fmt"

	"github.com/chrisdamba/foodautomat/internal/models"
)

// Offer conditions and actions are closed sum types in memory but live in
// jsonb columns. Each element is stored as {"kind": ..., "data": ...}.
// A stored kind this build does not know decodes to UnknownCondition so
// evaluation fails closed instead of crashing the batch.

const (
	kindOrderAmountAbove = "order_amount_above"
	kindTimeBased        = "time_based"
	kindUserFrequency    = "user_frequency"
	kindItemSpecific     = "item_specific"
	kindCategorySpecific = "category_specific"
	kindNewUser          = "new_user"
	kindLoyaltyTier      = "loyalty_tier"

	kindPercentageDiscount  = "percentage_discount"
	kindFixedAmountDiscount = "fixed_amount_discount"
	kindFreeItem            = "free_item"
	kindBuyOneGetOne        = "buy_one_get_one"
	kindComboPrice          = "combo_price"
)

type envelope struct {
	Kind string          `json:"kind"`
	Data json.RawMessage `json:"data,omitempty"`
}

func encodeConditions(conditions []models.Condition) ([]byte, error) {
	envelopes := make([]envelope, 0, len(conditions))
	for _, c := range conditions {
		var kind string
		switch c.(type) {
		case models.OrderAmountAbove:
			kind = kindOrderAmountAbove
		case models.TimeBased:
			kind = kindTimeBased
		case models.UserFrequencyIs:
			kind = kindUserFrequency
		case models.ItemSpecific:
			kind = kindItemSpecific
		case models.CategorySpecific:
			kind = kindCategorySpecific
		case models.NewUser:
			kind = kindNewUser
		case models.LoyaltyTierIs:
			kind = kindLoyaltyTier
		case models.UnknownCondition:
			kind = c.(models.UnknownCondition).Kind
		default:
			return nil, fmt.Errorf("unhandled condition type %T", c)
		}
		data, err := json.Marshal(c)
		if err != nil {
			return nil, err
		}
		envelopes = append(envelopes, envelope{Kind: kind, Data: data})
	}
	return json.Marshal(envelopes)
}

func decodeConditions(raw []byte) ([]models.Condition, error) {
	var envelopes []envelope
	if err := json.Unmarshal(raw, &envelopes); err != nil {
		return nil, err
	}
	conditions := make([]models.Condition, 0, len(envelopes))
	for _, env := range envelopes {
		var c models.Condition
		var err error
		switch env.Kind {
		case kindOrderAmountAbove:
			var v models.OrderAmountAbove
			err = json.Unmarshal(env.Data, &v)
			c = v
		case kindTimeBased:
			var v models.TimeBased
			err = json.Unmarshal(env.Data, &v)
			c = v
		case kindUserFrequency:
			var v models.UserFrequencyIs
			err = json.Unmarshal(env.Data, &v)
			c = v
		case kindItemSpecific:
			var v models.ItemSpecific
			err = json.Unmarshal(env.Data, &v)
			c = v
		case kindCategorySpecific:
			var v models.CategorySpecific
			err = json.Unmarshal(env.Data, &v)
			c = v
		case kindNewUser:
			var v models.NewUser
			err = json.Unmarshal(env.Data, &v)
			c = v
		case kindLoyaltyTier:
			var v models.LoyaltyTierIs
			err = json.Unmarshal(env.Data, &v)
			c = v
		default:
			c = models.UnknownCondition{Kind: env.Kind}
		}
		if err != nil {
			return nil, fmt.Errorf("decode condition %q: %w", env.Kind, err)
		}
		conditions = append(conditions, c)
	}
	return conditions, nil
}

func encodeActions(actions []models.Action) ([]byte, error) {
	envelopes := make([]envelope, 0, len(actions))
	for _, a := range actions {
		var kind string
		switch a.(type) {
		case models.PercentageDiscount:
			kind = kindPercentageDiscount
		case models.FixedAmountDiscount:
			kind = kindFixedAmountDiscount
		case models.FreeItem:
			kind = kindFreeItem
		case models.BuyOneGetOne:
			kind = kindBuyOneGetOne
		case models.ComboPrice:
			kind = kindComboPrice
		default:
			return nil, fmt.Errorf("unhandled action type %T", a)
		}
		data, err := json.Marshal(a)
		if err != nil {
			return nil, err
		}
		envelopes = append(envelopes, envelope{Kind: kind, Data: data})
	}
	return json.Marshal(envelopes)
}

func decodeActions(raw []byte) ([]models.Action, error) {
	var envelopes []envelope
	if err := json.Unmarshal(raw, &envelopes); err != nil {
		return nil, err
	}
	actions := make([]models.Action, 0, len(envelopes))
	for _, env := range envelopes {
		var a models.Action
		var err error
		switch env.Kind {
		case kindPercentageDiscount:
			var v models.PercentageDiscount
			err = json.Unmarshal(env.Data, &v)
			a = v
		case kindFixedAmountDiscount:
			var v models.FixedAmountDiscount
			err = json.Unmarshal(env.Data, &v)
			a = v
		case kindFreeItem:
			a = models.FreeItem{}
		case kindBuyOneGetOne:
			a = models.BuyOneGetOne{}
		case kindComboPrice:
			var v models.ComboPrice
			err = json.Unmarshal(env.Data, &v)
			a = v
		default:
			// an action this build cannot compute contributes nothing
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("decode action %q: %w", env.Kind, err)
		}
		actions = append(actions, a)
	}
	return actions, nil
}
