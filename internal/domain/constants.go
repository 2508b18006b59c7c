package domain

// Account defaults applied on registration
const (
	StartingCoins         = 1000
	StartingPackType      = "basic"
	BaseInventoryCapacity = 200
	BaseShopLevel         = 1
)

// Shop value composition: balance + inventory value + upgrade value
const (
	ShopValuePerLevel = 200
	ShopValuePerShelf = 150
)

// Shelf purchases: cost escalates per shelf already owned
const (
	ShelfBaseCost         = 500
	ShelfCapacityIncrease = 20
	ShelfSalesThroughput  = 5 // packs sold per shelf per daily claim
)

// Shop upgrades
const (
	UpgradeBaseCost             = 800
	UpgradeCapacityIncreaseBase = 50
	UpgradeCapacityIncreasePer  = 10
)

// Daily claim
const (
	DailyCooldownHours = 22
	DailyBonusMin      = 100
	DailyBonusMax      = 200
	DailySaleMargin    = 0.2 // profit fraction of pack price per unit sold
)

// Marketplace
const (
	MarketBrowsePageSize = 20
)

// Inventory listing
const (
	InventoryDefaultPageSize = 100
	InventoryMaxPageSize     = 400
)

// Leaderboard
const (
	LeaderboardPageSize = 10
)
