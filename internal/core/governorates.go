package core

import "github.com/shopspring/decimal"

// Governorate is one entry of the fixed shipping region list.
type Governorate struct {
	ID          string
	Name        string
	NameAr      string
	DefaultCost decimal.Decimal
}

func gov(id, name, nameAr string, cost int64) Governorate {
	return Governorate{ID: id, Name: name, NameAr: nameAr, DefaultCost: decimal.NewFromInt(cost)}
}

// Governorates returns Egypt's 27 governorates with their default shipping costs in EGP.
// A fresh slice is returned on every call.
func Governorates() []Governorate {
	return []Governorate{
		// Greater Cairo
		gov("cairo", "Cairo", "القاهرة", 50),
		gov("giza", "Giza", "الجيزة", 50),
		gov("qalyubia", "Qalyubia", "القليوبية", 55),
		// Alexandria and the Delta
		gov("alexandria", "Alexandria", "الإسكندرية", 60),
		gov("beheira", "Beheira", "البحيرة", 65),
		gov("sharqia", "Sharqia", "الشرقية", 60),
		gov("dakahlia", "Dakahlia", "الدقهلية", 60),
		gov("gharbia", "Gharbia", "الغربية", 60),
		gov("monufia", "Monufia", "المنوفية", 60),
		gov("kafr_el_sheikh", "Kafr El Sheikh", "كفر الشيخ", 65),
		gov("damietta", "Damietta", "دمياط", 65),
		// Canal
		gov("port_said", "Port Said", "بورسعيد", 70),
		gov("ismailia", "Ismailia", "الإسماعيلية", 70),
		gov("suez", "Suez", "السويس", 70),
		// Upper Egypt
		gov("faiyum", "Faiyum", "الفيوم", 70),
		gov("beni_suef", "Beni Suef", "بني سويف", 75),
		gov("minya", "Minya", "المنيا", 80),
		gov("asyut", "Asyut", "أسيوط", 85),
		gov("sohag", "Sohag", "سوهاج", 85),
		gov("qena", "Qena", "قنا", 90),
		gov("luxor", "Luxor", "الأقصر", 90),
		gov("aswan", "Aswan", "أسوان", 95),
		// Frontier
		gov("red_sea", "Red Sea", "البحر الأحمر", 100),
		gov("new_valley", "New Valley", "الوادي الجديد", 120),
		gov("matrouh", "Matrouh", "مطروح", 100),
		gov("north_sinai", "North Sinai", "شمال سيناء", 120),
		gov("south_sinai", "South Sinai", "جنوب سيناء", 110),
	}
}
