package combat

import (
	"strings"

	"github.com/tavernkeep/tavernkeep/internal/game/bestiary"
	"github.com/tavernkeep/tavernkeep/internal/game/character"
	"github.com/tavernkeep/tavernkeep/internal/game/gameerr"
)

// improvisedFormula is the damage of any non-weapon item swung in anger, and
// of bare hands.
const improvisedFormula = "1d4"

// unarmedSynonyms are weapon names that always resolve to an unarmed strike,
// checked only after the attacker's inventory. Unarmed strikes are not
// improvised; swinging a lantern is.
var unarmedSynonyms = []string{"fists", "fist", "punch", "kick", "unarmed", "bare hands"}

// Weapon is a resolved attack: the display name and damage formula to roll.
type Weapon struct {
	Name    string
	Formula string
	// Improvised marks a non-weapon item or an unarmed strike.
	Improvised bool
}

func isUnarmed(name string) bool {
	for _, syn := range unarmedSynonyms {
		if strings.EqualFold(name, syn) {
			return true
		}
	}
	return false
}

// ResolveWeapon finds the damage formula for an attack. Precedence: the
// attacker's inventory, then unarmed synonyms, then the bestiary template's
// weapon map. Inventory wins over a template weapon of the same name.
//
// Postcondition: On failure the error is KindWeaponUnavailable and its hints
// list what the attacker could have used, or KindParticipantNotFound when the
// attacker has neither a record nor a template.
func ResolveWeapon(attacker *character.Character, template *bestiary.Template, weaponName string) (Weapon, error) {
	if attacker != nil {
		if name, item, ok := attacker.Inventory.FindItem(weaponName); ok {
			if item.Weapon {
				return Weapon{Name: name, Formula: item.Damage}, nil
			}
			// Anything can be swung. It just will not do much.
			return Weapon{Name: name, Formula: improvisedFormula, Improvised: true}, nil
		}
		if isUnarmed(weaponName) {
			return Weapon{Name: weaponName, Formula: improvisedFormula}, nil
		}
		hints := weaponHints(attacker)
		return Weapon{}, gameerr.New(gameerr.KindWeaponUnavailable,
			"%s has no item called %q.", attacker.Name, weaponName).WithHints(hints...)
	}

	if template != nil {
		if formula, ok := template.FindWeapon(weaponName); ok {
			return Weapon{Name: weaponName, Formula: formula}, nil
		}
		return Weapon{}, gameerr.New(gameerr.KindWeaponUnavailable,
			"%s cannot attack with %q.", template.Name, weaponName).WithHints(template.WeaponNames()...)
	}

	return Weapon{}, gameerr.New(gameerr.KindParticipantNotFound,
		"No character or creature found to attack with %q.", weaponName)
}

// weaponHints lists everything the attacker could swing: every item name,
// weapon or not, plus the unarmed fallback.
func weaponHints(c *character.Character) []string {
	hints := append([]string(nil), c.Inventory.ItemNames()...)
	return append(hints, "fists")
}
