package models

type Equipment struct {
	Record
	BoilSizeL        float64 `json:"boil_size_l"`
	BatchSizeL       float64 `json:"batch_size_l"`
	TunVolumeL       float64 `json:"tun_volume_l"`
	TunWeightKg      float64 `json:"tun_weight_kg"`
	TunSpecificHeat  float64 `json:"tun_specific_heat"`
	TopUpWaterL      float64 `json:"top_up_water_l"`
	TrubChillerLossL float64 `json:"trub_chiller_loss_l"`
	EvapRateLPerHr   float64 `json:"evap_rate_l_per_hr"`
	BoilTimeMin      float64 `json:"boil_time_min"`
	Notes            string  `gorm:"type:text" json:"notes"`
}
