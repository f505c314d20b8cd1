package faq

// DefaultCorpus returns the stock membership FAQ corpus embedded in the
// binary. Deployments override it with a corpus file (see Provider); the
// embedded table keeps the fast-path working with zero configuration.
func DefaultCorpus() *Corpus {
	c, err := NewCorpus(defaultEntries)
	if err != nil {
		// The embedded corpus is statically valid.
		panic(err)
	}
	return c
}

// defaultEntries is the curated FAQ table. Order matters: equal-score matches
// resolve to the earliest entry, so broad topics sit before narrow ones
// within each group.
var defaultEntries = []Entry{
	// Memberships
	{
		Key:      "membership_plans",
		Keywords: []string{"membership", "plan", "plans", "subscribe", "subscription", "packages", "what plans", "available plans"},
		Answer: `We offer flexible membership plans:
- **Monthly Plan**: ₱2,999/month (30 days)
- **Quarterly Plan**: ₱7,999/quarter (90 days)
- **Annual Plan**: ₱29,999/year (365 days)
- **Walk-in Pass**: ₱500/day (1-day access)

Each plan includes unlimited access to all facilities and classes. Contact our staff for special corporate rates.`,
	},
	{
		Key:      "membership_cost",
		Keywords: []string{"how much", "price", "cost", "fee", "charge", "expensive", "membership cost", "plan price"},
		Answer: `Membership costs range from ₱500/day (walk-in) to ₱29,999/year (annual plan).
Most popular is our **Monthly Plan at ₱2,999**.
All plans include unlimited access to facilities, equipment, and classes.
Ask our staff about discounts for referrals or bulk memberships!`,
	},
	{
		Key:      "membership_renewal",
		Keywords: []string{"renew", "renewal", "extend", "extension", "expired", "expire", "after expiration", "reactivate"},
		Answer: `Renewing your membership is easy!
1. Log into your account on the Membership Plans page
2. Select your desired plan
3. Complete the payment
4. Your membership is activated immediately

You can renew before or after your current membership expires. No gaps needed!`,
	},
	{
		Key:      "membership_difference",
		Keywords: []string{"difference", "membership vs", "walk-in vs", "vs walk-in", "pass vs membership", "what is difference"},
		Answer: `**Membership vs Walk-in Pass**
- **Membership**: Long-term access (30-365 days), discounted rates, access anytime, personal account
- **Walk-in Pass**: Single-day or short-term access (1-7 days), pay per visit, no account needed

Choose membership if you plan regular visits. Walk-in is perfect for guests or occasional visits.`,
	},
	{
		Key:      "membership_benefits",
		Keywords: []string{"benefit", "benefits", "included", "what do i get", "what comes with", "membership include"},
		Answer: `All memberships include:
✓ Unlimited access to all equipment and facilities
✓ Group fitness classes (at no extra cost)
✓ Locker rooms with showers
✓ Member mobile app for booking classes
✓ Discounts on personal training (15% off)
✓ Priority access to new classes and events`,
	},
	{
		Key:      "membership_transfer",
		Keywords: []string{"transfer", "give to", "share", "someone else", "another person"},
		Answer: `Memberships are personal and cannot be transferred or shared.
However, you can purchase separate memberships for family members or friends. Contact our staff for family package discounts (10-20% off).`,
	},
	{
		Key:      "membership_cancel",
		Keywords: []string{"cancel", "cancellation", "stop", "pause", "refund", "want to cancel", "unsubscribe"},
		Answer: `To cancel your membership:
1. Contact our staff at the club or via email
2. Provide your membership details
3. We process cancellations within 24 hours

**Important**: Refunds are available for unused portions if cancelled within 30 days of purchase. After 30 days, remaining balance can be used for future memberships.`,
	},
	{
		Key:      "membership_pause",
		Keywords: []string{"pause", "freeze", "hold", "temporary", "vacation", "coming back"},
		Answer: `We offer membership freeze options:
- **Up to 30 days**: Free pause for members in good standing
- **Beyond 30 days**: Contact staff for custom arrangements

This is perfect for vacations or temporary situations. Your membership time doesn't count while paused!`,
	},
	{
		Key:      "membership_family",
		Keywords: []string{"family", "group", "referral", "friend", "multiple", "bulk", "discount"},
		Answer: `Great news! We offer family and group packages:
- **Family Plan**: 2+ members = 10% discount each
- **Referral Bonus**: Refer a friend, both get ₱500 credit
- **Corporate Rates**: 5+ employees = 15% discount

Ask our staff about these special offers!`,
	},
	{
		Key:      "membership_guest",
		Keywords: []string{"guest", "bring friend", "visitor", "visitor pass", "bring someone"},
		Answer: `Members can bring guests! Here's how:
- **Guest Pass**: ₱300/visit (1-day access)
- **Unlimited**: Guests can visit anytime with member present
- **Walk-in Option**: Guests can also purchase their own walk-in pass (₱500/day)

A staff member will register the guest at check-in.`,
	},

	// Payments
	{
		Key:      "payment_methods",
		Keywords: []string{"payment", "pay", "how to pay", "accept", "method", "cash", "gcash", "card", "credit"},
		Answer: `We accept two payment methods:
💵 **Cash**: Direct payment at the front desk
📱 **GCash**: Mobile payment (fastest & safest)

For online memberships, GCash is strongly recommended. You'll receive a payment reference number (e.g., PAY-20250115-123456) immediately.`,
	},
	{
		Key:      "payment_confirm",
		Keywords: []string{"confirm", "pending", "approval", "wait", "verify", "pending payment", "what does pending mean"},
		Answer: `Pending payments are waiting for staff approval:
1. **GCash Payments**: Usually confirmed within 1-2 hours
2. **Cash Payments**: Confirmed at payment desk

You'll receive a notification once approved. Check your dashboard for status. For urgent confirmations, contact our staff.`,
	},
	{
		Key:      "payment_reference",
		Keywords: []string{"reference", "receipt", "number", "reference number", "proof", "gcash reference"},
		Answer: `Your payment reference is your proof of payment!
Format: PAY-YYYYMMDD-XXXXXX (e.g., PAY-20250115-123456)

Keep this for your records. Use it when:
- Following up on pending payments
- Resolving payment issues
- Requesting refunds
- Tax documentation`,
	},
	{
		Key:      "payment_history",
		Keywords: []string{"history", "payment history", "past payment", "old payment", "previous", "receipt", "invoice"},
		Answer: `View your complete payment history:
1. Log in to your member account
2. Go to "Payments" section
3. See all transactions with dates and amounts

Can't find your payment? Contact our staff with your member ID or email. We'll help locate it!`,
	},
	{
		Key:      "payment_late",
		Keywords: []string{"late", "overdue", "outstanding", "owe", "unpaid", "past due", "delinquent"},
		Answer: `If your membership payment is overdue:
1. Your membership is temporarily inactive
2. Contact us to settle the payment
3. Upon payment, your membership reactivates immediately

We offer flexible payment arrangements. Talk to our staff, we want to help!`,
	},
	{
		Key:      "payment_refund",
		Keywords: []string{"refund", "refunding", "money back", "return", "wrong payment", "accidental charge"},
		Answer: `Refund Policy:
- **Unused Memberships (within 30 days)**: Full refund available
- **After 30 days**: Remaining balance credited to future membership
- **Wrong Amount Paid**: Refund processed within 3-5 business days

Contact our staff with your payment reference to request a refund. We'll process it quickly!`,
	},
	{
		Key:      "payment_invoice",
		Keywords: []string{"invoice", "receipt", "bill", "documentation", "tax", "company", "proof of payment"},
		Answer: `To get an invoice or receipt:
1. Log in to your account → Payments section
2. Click "Download Invoice" (available immediately after payment)
3. Or contact our staff to email you a formal invoice

Perfect for company reimbursement or tax purposes!`,
	},
	{
		Key:      "payment_failed",
		Keywords: []string{"failed", "error", "declined", "unsuccessful", "didn't work", "not accepted", "transaction failed"},
		Answer: `If your payment failed:
1. **GCash Issues**: Check your GCash balance, ensure 3G/WiFi connection
2. **Try Again**: Attempt the payment once more
3. **Still Not Working**: Contact our staff immediately

We can help troubleshoot or accept cash payment as alternative.`,
	},

	// Kiosk and check-in
	{
		Key:      "kiosk_pin",
		Keywords: []string{"kiosk", "pin", "kiosk pin", "check in", "check-in", "check out", "how to check in"},
		Answer: `Using your Kiosk PIN:
1. Arrive at the club and go to the kiosk
2. Enter your 6-digit PIN (found in your account)
3. Press "Check In" - the kiosk will confirm
4. You're now checked in! Enjoy your workout

**Check Out**: Same process at the end, just press "Check Out"
Lost your PIN? Contact staff to generate a new one.`,
	},
	{
		Key:      "kiosk_forgot_pin",
		Keywords: []string{"forgot", "lost", "reset", "don't remember", "forget pin", "new pin", "generate pin"},
		Answer: `No problem! Getting a new PIN is easy:
1. Ask staff at the front desk
2. Provide your member ID or email
3. Staff generates a new PIN instantly
4. Your old PIN is deactivated

Takes less than 1 minute. Ask any staff member!`,
	},
	{
		Key:      "kiosk_multiple_checkin",
		Keywords: []string{"checked in twice", "two checkins", "duplicate", "multiple check", "already checked", "late checkout"},
		Answer: `Accidental double check-in? No worries!
1. Contact a staff member immediately
2. Show your membership ID
3. Staff will correct the attendance record

Our system allows correcting these within 24 hours without penalty.`,
	},
	{
		Key:      "kiosk_phone",
		Keywords: []string{"phone", "mobile", "app", "not", "kiosk", "alternative", "without kiosk"},
		Answer: `Currently, check-in is kiosk-only for security and accuracy.
**Coming Soon**: Mobile app check-in feature!

Until then:
- Use the kiosk at the entrance
- Ask staff if you need help
- Staff can manually check you in if kiosk unavailable

We're working on making this easier!`,
	},
	{
		Key:      "kiosk_visitor",
		Keywords: []string{"visitor", "guest", "friend", "bring guest", "guest checkin"},
		Answer: `Guest check-in process:
1. Guest arrives with member
2. Staff registers guest at front desk (₱300)
3. Staff checks in guest to the system
4. Guest gets temporary access for the day

Easy process takes just 2 minutes!`,
	},
	{
		Key:      "kiosk_issue",
		Keywords: []string{"kiosk broken", "kiosk down", "not working", "error", "machine issue", "help check in"},
		Answer: `Kiosk not working? Notify staff immediately!
1. Alert any staff member
2. Provide your PIN and member ID
3. Staff will manually check you in
4. You'll still be able to access the club

We maintain our kiosks regularly. Thank you for your patience if there's a delay!`,
	},

	// Facilities and policies
	{
		Key:      "facilities_hours",
		Keywords: []string{"hours", "open", "close", "time", "when", "operating hours", "schedule"},
		Answer: `MemberPulse Fitness Hours:
📅 **Monday - Friday**: 6:00 AM - 10:00 PM
📅 **Saturday**: 7:00 AM - 9:00 PM
📅 **Sunday**: 7:00 AM - 6:00 PM
📅 **Holidays**: 8:00 AM - 5:00 PM (check calendar)

Members have 24-hour access with membership card (coming soon)!`,
	},
	{
		Key:      "facilities_equipment",
		Keywords: []string{"equipment", "machine", "facility", "facilities", "what do you have", "available", "treadmill"},
		Answer: `Our facilities include:
💪 **Strength Training**: Free weights, dumbbells (5kg-50kg), weight machines
🏃 **Cardio**: Treadmills (10), stationary bikes (8), ellipticals (6)
📦 **Equipment**: Barbells, kettlebells, medicine balls, resistance bands
🧘 **Wellness**: Yoga mats, foam rollers, stretching area
🚿 **Amenities**: Locker rooms, showers, toilets, water fountains

Hiring personal trainer? All equipment available for sessions!`,
	},
	{
		Key:      "facilities_rules",
		Keywords: []string{"rule", "policy", "etiquette", "do and don't", "not allowed", "prohibited"},
		Answer: `Club Etiquette & Rules:
✓ **DO**: Wipe equipment after use, return weights to rack, use headphones, respect others
✗ **DON'T**: Hog equipment, drop weights loudly, grunt excessively, photograph others
📸 Photos/Videos: Permitted for personal use only (respect privacy)
🎵 Music: Use headphones (no loud speakers)
👕 Dress Code: Proper workout attire required (no street clothes)

Let's keep our club clean and welcoming for everyone!`,
	},
	{
		Key:      "facilities_locker",
		Keywords: []string{"locker", "storage", "belongings", "theft", "safe", "lock", "valuables"},
		Answer: `Locker & Storage:
🔒 **Secure Lockers**: Available for rent (₱50/month or free with annual membership)
📱 **Keep with You**: Don't leave valuables unattended
💰 **Club Responsibility**: Not responsible for lost/stolen items

Tips:
- Use lockers for all belongings
- Never leave valuables on the floor
- Ask staff for temporary storage
- Most lockers auto-lock after 15 mins

Better safe than sorry!`,
	},
	{
		Key:      "facilities_water",
		Keywords: []string{"water", "drink", "hydration", "fountain", "refill", "bottle"},
		Answer: `Staying Hydrated:
💧 **Free Water Fountains**: Located throughout the club
🥤 **Bring Your Own**: Water bottles welcome (no outside beverages)
☕ **Café Coming Soon**: We're adding a café with refreshments soon!

Drink plenty of water during your workout! Generally aim for 2-3 liters daily when exercising.`,
	},
	{
		Key:      "facilities_childcare",
		Keywords: []string{"child", "kid", "baby", "childcare", "daycare", "bring kids"},
		Answer: `Childcare Services:
🍼 **Available**: Limited supervised childcare during peak hours (6-9 AM, 4-7 PM weekdays)
👶 **Age Range**: 3 months - 5 years
💰 **Cost**: ₱200/hour per child

Requirements:
- Must book 24 hours in advance
- Childcare staff trained in first aid
- Modern, safe facility with toys and activities

Reserve your spot at the front desk!`,
	},
	{
		Key:      "facilities_parking",
		Keywords: []string{"parking", "park", "car", "vehicle", "space", "lot"},
		Answer: `Parking at MemberPulse Fitness:
🅿️ **Free Parking**: Ample free parking for all members
📍 **Location**: Adjacent to the entrance, well-lit at night
🚗 **Security**: 24-hour CCTV surveillance
🏍️ **Motorcycles**: Designated motorcycle parking area

Our parking is safe and convenient. No fees!`,
	},
	{
		Key:      "facilities_shower",
		Keywords: []string{"shower", "wash", "bathroom", "shower facilities", "change", "towel"},
		Answer: `Shower & Locker Room:
🚿 **Facilities**: Modern, clean shower stalls with hot water
🧼 **Amenities**: Soap and shampoo provided (bring own for preference)
🏖️ **Towels**: Complimentary small towels (bring own for full coverage)
👕 **Changing**: Private changing rooms available

Perfect to freshen up before returning to work or home!`,
	},

	// Registration and account
	{
		Key:      "register_how",
		Keywords: []string{"register", "join", "sign up", "create account", "new member", "how to register"},
		Answer: `Joining MemberPulse Fitness is simple:
1. Visit our website or app
2. Click "Join Now" or "Register"
3. Fill in your details (name, email, phone, etc.)
4. Choose your membership plan
5. Complete payment (Cash or GCash)
6. Receive your member ID and PIN
7. Start working out!

Takes less than 10 minutes! Ask staff if you need help.`,
	},
	{
		Key:      "register_requirements",
		Keywords: []string{"requirement", "what do i need", "what to bring", "document", "age", "minimum age"},
		Answer: `Registration Requirements:
✓ Full name
✓ Valid email address
✓ Phone number
✓ Age 13+ (parental consent required for minors)
✓ Payment method (cash or GCash)

Optional but helpful:
- Emergency contact number
- Medical conditions (we'll adjust your plan)
- Fitness goals

That's it! We're ready to welcome you!`,
	},
	{
		Key:      "register_minor",
		Keywords: []string{"minor", "under 18", "teen", "young", "parent", "guardian", "permission"},
		Answer: `Minors Under 18:
✓ **Age 13-17**: Requires parental/guardian consent and supervision initially
✓ **Age 18+**: Can register independently
📝 **Paperwork**: Consent form required (we'll provide)
👨‍⚖️ **Supervision**: First 3 visits should be with guardian present

Great that young people want to stay fit! We offer teen-friendly programs.`,
	},
	{
		Key:      "register_student",
		Keywords: []string{"student", "discount", "school", "college", "university", "student rate"},
		Answer: `Student Discounts:
🎓 **20% OFF**: All plans for valid student ID holders
- High school students: ₱2,399/month (regular ₱2,999)
- College students: Same 20% discount
- Valid ID required

Great deal to stay healthy while studying! Register at our desk with your student ID.`,
	},
	{
		Key:      "register_senior",
		Keywords: []string{"senior", "senior citizen", "elderly", "age 60", "discount", "elderly discount"},
		Answer: `Senior Citizen Discounts:
👴 **15% OFF**: All plans for members 60+
- Senior programs: Low-impact classes, health monitoring
- Flexible hours: Early morning rates available
- Personal training: ₱300/session (regular ₱500)

We love our senior members! Special care for health and fitness goals.`,
	},
	{
		Key:      "register_pwd",
		Keywords: []string{"pwd", "disabled", "disability", "wheelchair", "accessible", "special need"},
		Answer: `Persons with Disability (PWD):
♿ **25% DISCOUNT**: All plans for PWD members (with PWD ID)
♿ **Accessibility**: Wheelchair ramps, accessible bathrooms, elevators
♿ **Assistance**: Staff trained to assist with equipment modifications
♿ **Programming**: Special adaptive classes available

Inclusive experience for everyone! Contact management for specific accommodations.`,
	},

	// Workout and fitness
	{
		Key:      "workout_beginner",
		Keywords: []string{"beginner", "never", "new to gym", "first time", "help", "how to start", "no experience"},
		Answer: `Welcome! Here's your beginner plan:
🎯 **Week 1-2**: Get familiar with equipment, learn proper form
🎯 **Week 3-4**: Start light workouts (3 days/week)
🎯 **Week 5+**: Increase intensity and frequency

**Sample Routine** (3 days/week):
- Day 1: Upper body (push-ups, rows, shoulder press)
- Day 2: Lower body (squats, lunges, leg press)
- Day 3: Cardio + core (treadmill, bike, planks)

📖 **FREE Orientation**: Ask our staff for a complimentary tour and equipment tutorial!`,
	},
	{
		Key:      "workout_plan",
		Keywords: []string{"plan", "routine", "program", "workout plan", "what should i do", "schedule"},
		Answer: `Workout Planning:
🏋️ **Free Consultation**: Talk to our staff to create a plan based on your goals
🏋️ **Personal Training**: ₱500/session (includes custom plan)
🏋️ **Online Plans**: Available through our member app

Start with:
- 3-4 days/week training
- 30-45 min per session
- Mix of cardio and strength
- 48-hour rest between same muscle groups

Goals? Tell our staff, we'll help design your ideal plan!`,
	},
	{
		Key:      "workout_classes",
		Keywords: []string{"class", "classes", "group", "yoga", "spin", "zumba", "group fitness"},
		Answer: `Group Fitness Classes (FREE for members!):
🧘 **Yoga**: Mon-Wed-Fri 7 AM & 6 PM
🚴 **Spinning**: Tue-Thu-Sat 6 AM & 7 PM
💃 **Zumba**: Wed-Sat 5:30 PM
🥊 **BoxFit**: Mon-Wed-Fri 5 PM
🏃 **HIIT**: Tue-Thu-Sat 6:30 AM

All classes included with your membership! No extra fees. Book through our app.`,
	},
	{
		Key:      "workout_trainer",
		Keywords: []string{"trainer", "personal trainer", "coach", "training", "one-on-one", "private session"},
		Answer: `Personal Training:
💪 **Cost**: ₱500/session (members) | ₱600 (non-members)
💪 **Duration**: 60 minutes
💪 **Availability**: 6 AM - 9 PM daily
💪 **Certification**: All trainers certified and insured

Package deals available:
- 5 sessions: ₱2,250 (10% discount)
- 10 sessions: ₱4,200 (16% discount)

Contact our trainers to discuss your fitness goals!`,
	},
	{
		Key:      "workout_progress",
		Keywords: []string{"progress", "progress tracking", "measurement", "body composition", "weight"},
		Answer: `Tracking Your Progress:
📊 **Free Assessment**: Monthly body composition analysis
📊 **Measurements**: Height, weight, waist, body fat percentage
📊 **Progress Report**: Quarterly fitness assessments
📊 **App Tracking**: Log workouts in our mobile app

Our staff can show you how to use our equipment with built-in progress tracking. Stay motivated!`,
	},
	{
		Key:      "workout_nutrition",
		Keywords: []string{"nutrition", "diet", "eating", "meal", "food", "protein", "supplement"},
		Answer: `Nutrition & Diet:
🥗 **Expert Advice**: Ask our trainers for nutrition tips (free!)
🥗 **Meal Planning**: Personal trainers can create meal plans (₱300)
🥗 **Supplements**: We sell protein powder and supplements at member prices
🥗 **General Tips**: Eat whole foods, protein per workout, stay hydrated

Coming soon: Nutritionist consultations available!`,
	},

	// Account and membership status
	{
		Key:      "account_login",
		Keywords: []string{"login", "sign in", "password", "forgot password", "can't login", "access account"},
		Answer: `Logging Into Your Account:
1. Visit our website or open our app
2. Click "Login" or "Sign In"
3. Enter your email and password
4. Click "Remember Me" for future logins

**Forgot Password?**
1. Click "Forgot Password" on login page
2. Enter your email
3. Check your email for reset link
4. Create a new password

Can't log in? Contact support@memberpulse.fit`,
	},
	{
		Key:      "account_update",
		Keywords: []string{"update", "change", "edit", "profile", "information", "phone", "address"},
		Answer: `Updating Your Account Info:
1. Log in to your account
2. Go to "Profile" or "Account Settings"
3. Edit any field (name, phone, email, address, etc.)
4. Click "Save Changes"

Changes take effect immediately! Updated info helps us keep you informed.`,
	},
	{
		Key:      "account_verify_email",
		Keywords: []string{"verify", "email", "confirmation", "confirm email", "didn't receive"},
		Answer: `Email Verification:
✓ **Check Inbox**: Look for verification email
✓ **Check Spam**: Sometimes emails go to spam
✓ **Resend**: Click "Resend Verification Email" in account settings
⏰ **Takes 5 mins**: Usually arrives within 5 minutes

Not received? Contact support@memberpulse.fit and we'll help immediately!`,
	},
	{
		Key:      "account_data",
		Keywords: []string{"data", "privacy", "delete account", "download", "personal data", "what data"},
		Answer: `Your Data & Privacy:
🔒 **Privacy Protected**: Your data is encrypted and secure
📥 **Data Download**: Request your data through Settings → Privacy
🗑️ **Data Deletion**: Request account deletion (requires 30-day notice)
📋 **Data We Collect**: Name, email, phone, fitness info (never sold)

Your privacy is our priority! Questions? Email privacy@memberpulse.fit`,
	},
}
