package models

import (
	"time"
)

// DataSource identifies how an auction sheet record was produced.
const (
	DataSourceAIExtraction = "ai_extraction"
	DataSourceManualEntry  = "manual_entry"
)

// ImageType classifies a stored auction image by purpose.
type ImageType string

const (
	ImageTypeAuctionSheet  ImageType = "auction_sheet"
	ImageTypeVehiclePhoto  ImageType = "vehicle_photo"
	ImageTypeDefectDiagram ImageType = "defect_diagram"
	ImageTypeDocument      ImageType = "document"
)

// AuctionData is the canonical extracted field set for one Japanese
// vehicle auction sheet. It is the single source of truth for the
// extraction contract: the json tags define the wire schema the model
// must produce, and the validate tags define the required fields and
// enum memberships the validator enforces. The structured-output schema
// sent to the model is generated from these same tags, so the two
// cannot drift.
//
// Only LotNumber, Make and Model are mandatory. Optional numerics are
// pointers so that "absent" survives a round trip; optional booleans
// that default to true (IsExportEligible) are pointers for the same
// reason. Equipment flags default to false and stay plain bools.
type AuctionData struct {
	// Basic auction information
	LotNumber        string `json:"lot_number" validate:"required"`
	AuctionHouseCode string `json:"auction_house_code,omitempty"`
	AuctionHouseName string `json:"auction_house_name,omitempty"`
	AuctionDate      string `json:"auction_date,omitempty"`
	AuctionTime      string `json:"auction_time,omitempty"`
	AuctionLocation  string `json:"auction_location,omitempty"`

	// Vehicle identification
	VehicleRegistrationYear  *int   `json:"vehicle_registration_year,omitempty"`
	VehicleRegistrationMonth *int   `json:"vehicle_registration_month,omitempty"`
	FirstRegistrationDate    string `json:"first_registration_date,omitempty"`
	Make                     string `json:"make" validate:"required"`
	Model                    string `json:"model" validate:"required"`
	ModelCode                string `json:"model_code,omitempty"`
	VehicleTypeDesignation   string `json:"vehicle_type_designation,omitempty"`
	ChassisNumber            string `json:"chassis_number,omitempty"`
	EngineCode               string `json:"engine_code,omitempty"`
	DisplacementCc           *int   `json:"displacement_cc,omitempty"`
	FuelType                 string `json:"fuel_type,omitempty" validate:"omitempty,oneof=ガソリン ディーゼル ハイブリッド EV その他"`
	EngineType               string `json:"engine_type,omitempty"`
	SeatingCapacity          *int   `json:"seating_capacity,omitempty"`

	// Vehicle specifications
	DriveType          string `json:"drive_type,omitempty" validate:"omitempty,oneof=FF FR 4WD AWD MR RR"`
	TransmissionType   string `json:"transmission_type,omitempty" validate:"omitempty,oneof=AT MT FAT CVT その他"`
	TransmissionSpeeds *int   `json:"transmission_speeds,omitempty"`
	Doors              *int   `json:"doors,omitempty"`
	SteeringPosition   string `json:"steering_position,omitempty" validate:"omitempty,oneof=左 右"`
	BodyColor          string `json:"body_color,omitempty"`
	ColorCode          string `json:"color_code,omitempty"`
	InteriorColor      string `json:"interior_color,omitempty"`

	// Vehicle dimensions
	VehicleLength *int `json:"vehicle_length,omitempty"`
	VehicleWidth  *int `json:"vehicle_width,omitempty"`
	VehicleHeight *int `json:"vehicle_height,omitempty"`
	VehicleWeight *int `json:"vehicle_weight,omitempty"`

	// Mileage and condition
	MileageKm           *int   `json:"mileage_km,omitempty"`
	MileageUnit         string `json:"mileage_unit,omitempty" validate:"omitempty,oneof=km miles"`
	MileageAuthenticity string `json:"mileage_authenticity,omitempty" validate:"omitempty,oneof=正常 改ざん疑い 交換歴 不明"`

	// Auction grades
	OverallGrade  string `json:"overall_grade,omitempty"`
	ExteriorGrade string `json:"exterior_grade,omitempty"`
	InteriorGrade string `json:"interior_grade,omitempty"`
	ExteriorScore *int   `json:"exterior_score,omitempty"`
	InteriorScore *int   `json:"interior_score,omitempty"`
	EngineScore   *int   `json:"engine_score,omitempty"`

	// Equipment and features
	EquipmentAc                  bool   `json:"equipment_ac"`
	EquipmentAac                 bool   `json:"equipment_aac"`
	EquipmentPs                  bool   `json:"equipment_ps"`
	EquipmentPw                  bool   `json:"equipment_pw"`
	EquipmentAbs                 bool   `json:"equipment_abs"`
	EquipmentAirbag              bool   `json:"equipment_airbag"`
	EquipmentSr                  bool   `json:"equipment_sr"`
	EquipmentAw                  bool   `json:"equipment_aw"`
	EquipmentTv                  bool   `json:"equipment_tv"`
	EquipmentNav                 bool   `json:"equipment_nav"`
	EquipmentLeather             bool   `json:"equipment_leather"`
	EquipmentBsm                 bool   `json:"equipment_bsm"`
	EquipmentRadarCruise         bool   `json:"equipment_radar_cruise"`
	EquipmentEtc                 bool   `json:"equipment_etc"`
	EquipmentBackupCamera        bool   `json:"equipment_backup_camera"`
	EquipmentPushStart           bool   `json:"equipment_push_start"`
	EquipmentHidLights           bool   `json:"equipment_hid_lights"`
	EquipmentParkingSensors      bool   `json:"equipment_parking_sensors"`
	EquipmentLaneKeepAssist      bool   `json:"equipment_lane_keep_assist"`
	EquipmentCollisionPrevention bool   `json:"equipment_collision_prevention"`
	EquipmentOther               string `json:"equipment_other,omitempty"`

	// Inspection and registration
	VehicleInspectionDate string `json:"vehicle_inspection_date,omitempty"`
	ShakenExpiryDate      string `json:"shaken_expiry_date,omitempty"`
	RegistrationNumber    string `json:"registration_number,omitempty"`
	RegistrationLocation  string `json:"registration_location,omitempty"`
	RecallStatus          *bool  `json:"recall_status,omitempty"`
	HasServiceRecords     *bool  `json:"has_service_records,omitempty"`
	PreviousOwnerCount    *int   `json:"previous_owner_count,omitempty"`
	OneOwner              *bool  `json:"one_owner,omitempty"`
	NonSmoking            *bool  `json:"non_smoking,omitempty"`
	RepairHistory         *bool  `json:"repair_history,omitempty"`

	// Pricing information
	StartingPrice *int   `json:"starting_price,omitempty"`
	ReservePrice  *int   `json:"reserve_price,omitempty"`
	AveragePrice  *int   `json:"average_price,omitempty"`
	FinalPrice    *int   `json:"final_price,omitempty"`
	Currency      string `json:"currency,omitempty"`

	// Sales information
	RecyclingFee     *int   `json:"recycling_fee,omitempty"`
	IsExportEligible *bool  `json:"is_export_eligible,omitempty"`
	SalesPoints      string `json:"sales_points,omitempty"`
	SellerType       string `json:"seller_type,omitempty"`

	// Additional auction information
	CornerNumber     string `json:"corner_number,omitempty"`
	LaneNumber       string `json:"lane_number,omitempty"`
	AuctionBlockTime string `json:"auction_block_time,omitempty"`

	// Vehicle defects by body area, as free-text defect codes
	FrontBumperDefects      string `json:"front_bumper_defects,omitempty"`
	HoodDefects             string `json:"hood_defects,omitempty"`
	FrontLeftFenderDefects  string `json:"front_left_fender_defects,omitempty"`
	FrontRightFenderDefects string `json:"front_right_fender_defects,omitempty"`
	FrontLeftDoorDefects    string `json:"front_left_door_defects,omitempty"`
	FrontRightDoorDefects   string `json:"front_right_door_defects,omitempty"`
	WindshieldDefects       string `json:"windshield_defects,omitempty"`
	LeftSideDefects         string `json:"left_side_defects,omitempty"`
	RightSideDefects        string `json:"right_side_defects,omitempty"`
	RearLeftDoorDefects     string `json:"rear_left_door_defects,omitempty"`
	RearRightDoorDefects    string `json:"rear_right_door_defects,omitempty"`
	SlidingDoorLeftDefects  string `json:"sliding_door_left_defects,omitempty"`
	SlidingDoorRightDefects string `json:"sliding_door_right_defects,omitempty"`
	RearBumperDefects       string `json:"rear_bumper_defects,omitempty"`
	TrunkDefects            string `json:"trunk_defects,omitempty"`
	RearLeftFenderDefects   string `json:"rear_left_fender_defects,omitempty"`
	RearRightFenderDefects  string `json:"rear_right_fender_defects,omitempty"`
	RearWindowDefects       string `json:"rear_window_defects,omitempty"`
	RoofDefects             string `json:"roof_defects,omitempty"`
	FrontLeftWheelDefects   string `json:"front_left_wheel_defects,omitempty"`
	FrontRightWheelDefects  string `json:"front_right_wheel_defects,omitempty"`
	RearLeftWheelDefects    string `json:"rear_left_wheel_defects,omitempty"`
	RearRightWheelDefects   string `json:"rear_right_wheel_defects,omitempty"`
	InteriorDefects         string `json:"interior_defects,omitempty"`
	EngineDefects           string `json:"engine_defects,omitempty"`
	UndercarriageDefects    string `json:"undercarriage_defects,omitempty"`
	OtherDefects            string `json:"other_defects,omitempty"`

	// Component conditions
	TireCondition         string `json:"tire_condition,omitempty"`
	TireBrand             string `json:"tire_brand,omitempty"`
	BatteryCondition      string `json:"battery_condition,omitempty"`
	GlassCondition        string `json:"glass_condition,omitempty"`
	FrameChassisCondition string `json:"frame_chassis_condition,omitempty"`
	PaintThickness        string `json:"paint_thickness,omitempty"`

	// Defects summary
	TotalDefectCount    int    `json:"total_defect_count"`
	MajorDefectsSummary string `json:"major_defects_summary,omitempty"`
	DefectDiagramNotes  string `json:"defect_diagram_notes,omitempty"`

	// Comments and notes
	InspectorComments string `json:"inspector_comments,omitempty"`
	SellerComments    string `json:"seller_comments,omitempty"`
	AuctionHouseNotes string `json:"auction_house_notes,omitempty"`
	ConditionReport   string `json:"condition_report,omitempty"`
	AdditionalNotes   string `json:"additional_notes,omitempty"`

	// Auction results
	AuctionStatus         string `json:"auction_status,omitempty" validate:"omitempty,oneof=upcoming sold unsold cancelled"`
	BidCount              *int   `json:"bid_count,omitempty"`
	WinningBidderLocation string `json:"winning_bidder_location,omitempty"`
	SaleDate              string `json:"sale_date,omitempty"`
}

// ApplyDefaults fills the documented default values for unset optional
// fields. Called by the validator before enum checks so a defaulted
// value is still subject to them.
func (d *AuctionData) ApplyDefaults() {
	if d.Currency == "" {
		d.Currency = "JPY"
	}
	if d.MileageUnit == "" {
		d.MileageUnit = "km"
	}
	if d.MileageAuthenticity == "" {
		d.MileageAuthenticity = "正常"
	}
	if d.AuctionStatus == "" {
		d.AuctionStatus = "upcoming"
	}
	if d.IsExportEligible == nil {
		eligible := true
		d.IsExportEligible = &eligible
	}
}

// AuctionSheet is the persisted auction sheet record: the canonical
// extracted data plus identity and provenance.
type AuctionSheet struct {
	ID string `json:"id" badgerhold:"key"`

	AuctionData

	// SourceURL is the auction page the sheet was extracted from.
	// Empty for manual entries.
	SourceURL string `json:"source_url,omitempty"`
	// DataSource distinguishes AI-extracted from manually entered
	// records; mock extractions are AI-sourced with a synthetic marker
	// in AdditionalNotes.
	DataSource   string    `json:"data_source" badgerholdIndex:"DataSource"`
	QualityScore int       `json:"quality_score"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// SheetUpdate is the narrow set of fields an operator may change after
// creation. Everything else is immutable once extracted.
type SheetUpdate struct {
	AuctionStatus         *string `json:"auction_status,omitempty"`
	FinalPrice            *int    `json:"final_price,omitempty"`
	BidCount              *int    `json:"bid_count,omitempty"`
	WinningBidderLocation *string `json:"winning_bidder_location,omitempty"`
	SaleDate              *string `json:"sale_date,omitempty"`
	AdditionalNotes       *string `json:"additional_notes,omitempty"`
}
