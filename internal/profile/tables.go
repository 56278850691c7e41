package profile

var tags = []string{
	"Coffee", "Hiking", "Movies", "Live Music", "Board Games",
	"Cats", "Dogs", "Traveler", "Foodie", "Tech", "Art",
	"Runner", "Climbing", "Books", "Yoga", "Photography",
}

var firstNames = []string{
	"Alex", "Sam", "Jordan", "Taylor", "Casey", "Avery", "Riley", "Morgan", "Quinn", "Cameron",
	"Jamie", "Drew", "Parker", "Reese", "Emerson", "Rowan", "Shawn", "Harper", "Skyler", "Devon",
}

var cities = []string{
	"Brooklyn", "Manhattan", "Queens", "Jersey City", "Hoboken", "Astoria",
	"Williamsburg", "Bushwick", "Harlem", "Lower East Side",
}

var jobs = []string{
	"Product Designer", "Software Engineer", "Data Analyst", "Barista", "Teacher",
	"Photographer", "Architect", "Chef", "Nurse", "Marketing Manager", "UX Researcher",
}

var bios = []string{
	"Weekend hikes and weekday lattes.",
	"Dog parent. Amateur chef. Karaoke enthusiast.",
	"Trying every taco in the city, for science.",
	"Bookstore browser and movie quote machine.",
	"Gym sometimes, Netflix always.",
	"Looking for the best slice in town.",
	"Will beat you at Mario Kart.",
	"Currently planning the next trip.",
}

// Unsplash photo IDs used as public placeholder portraits.
var unsplashSeeds = []string{
	"1515462277126-2b47b9fa09e6",
	"1520975916090-3105956dac38",
	"1519340241574-2cec6aef0c01",
	"1554151228-14d9def656e4",
	"1548142813-c348350df52b",
	"1517841905240-472988babdf9",
	"1535713875002-d1d0cf377fde",
	"1545996124-0501ebae84d0",
	"1524504388940-b1c1722653e1",
	"1531123897727-8f129e1688ce",
}
