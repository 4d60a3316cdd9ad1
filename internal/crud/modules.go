package crud

import (
	"errors"
	"strings"
)

const (
	ModuleUser           = "yonghu"
	ModuleCoach          = "jianshenjiaolian"
	ModuleCourse         = "jianshenkecheng"
	ModuleCourseBooking  = "kechengyuyue"
	ModulePrivateBooking = "sijiaoyuyue"
	ModuleMembershipCard = "huiyuanka"
	ModuleCardPurchase   = "huiyuankagoumai"
	ModuleForum          = "forum"
	ModuleOrders         = "orders"
	ModuleNews           = "news"
)

var ErrUnknownModule = errors.New("unknown module")

var knownModules = map[string]struct{}{
	ModuleUser:           {},
	ModuleCoach:          {},
	ModuleCourse:         {},
	ModuleCourseBooking:  {},
	ModulePrivateBooking: {},
	ModuleMembershipCard: {},
	ModuleCardPurchase:   {},
	ModuleForum:          {},
	ModuleOrders:         {},
	ModuleNews:           {},
}

func IsKnownModule(module string) bool {
	_, ok := knownModules[strings.TrimSpace(module)]
	return ok
}

func Modules() []string {
	return []string{
		ModuleUser,
		ModuleCoach,
		ModuleCourse,
		ModuleCourseBooking,
		ModulePrivateBooking,
		ModuleMembershipCard,
		ModuleCardPurchase,
		ModuleForum,
		ModuleOrders,
		ModuleNews,
	}
}
